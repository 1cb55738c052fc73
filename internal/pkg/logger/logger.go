package logger

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Logger define a interface de logging estruturado usada por handlers,
// serviços e repositórios. As camadas dependem apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
}

// Entry é a estrutura de uma linha de log em JSON.
type Entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

var levelWeight = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
	"fatal": 4,
}

// JSONLogger é a implementação concreta da interface Logger, escrevendo
// uma linha JSON por evento via o pacote log nativo.
type JSONLogger struct {
	minLevel int
}

// NewLogger cria o logger da aplicação com o nível mínimo informado
// ("debug", "info", "warn", "error" ou "fatal").
func NewLogger(level string) Logger {
	log.SetFlags(0)

	min, ok := levelWeight[level]
	if !ok {
		min = levelWeight["info"]
	}
	return &JSONLogger{minLevel: min}
}

func (l *JSONLogger) write(level, msg string, fields map[string]interface{}, err error) {
	if levelWeight[level] < l.minLevel {
		return
	}

	entry := Entry{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     level,
		Message:   msg,
		Fields:    fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	line, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		// Nunca deixa a aplicação cair por causa de um log.
		log.Printf(`{"level":"error","message":"falha ao serializar log: %v"}`, marshalErr)
		return
	}
	log.Println(string(line))

	if level == "fatal" {
		os.Exit(1)
	}
}

func (l *JSONLogger) Debug(msg string, fields map[string]interface{}) { l.write("debug", msg, fields, nil) }
func (l *JSONLogger) Info(msg string, fields map[string]interface{})  { l.write("info", msg, fields, nil) }
func (l *JSONLogger) Warn(msg string, fields map[string]interface{})  { l.write("warn", msg, fields, nil) }
func (l *JSONLogger) Error(msg string, err error)                     { l.write("error", msg, nil, err) }
func (l *JSONLogger) Fatal(msg string, err error)                     { l.write("fatal", msg, nil, err) }
