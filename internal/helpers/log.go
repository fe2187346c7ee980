package helpers

import (
	"fmt"
	"log"
)

type Logger interface {
	Println(v ...any)
	Printf(format string, v ...any)
	Print(v ...any)
}

type _defaultLogger struct {
}

func (l *_defaultLogger) Println(v ...any) {
	log.Println(v...)
}
func (l *_defaultLogger) Printf(format string, v ...any) {
	log.Printf(format, v...)
}
func (l *_defaultLogger) Print(v ...any) {
	log.Print(v...)
}

var DefaultLogger = _defaultLogger{}

type _silentLogger struct {
}

func (l *_silentLogger) Println(v ...any) {
}
func (l *_silentLogger) Printf(format string, v ...any) {
}
func (l *_silentLogger) Print(v ...any) {
}

var SilentLogger = _silentLogger{}

// FnLogger forwards log lines to a callback, eg. over a websocket.
type FnLogger struct {
	Callback func(message string)
}

func (l *FnLogger) Println(v ...any) {
	l.Callback(fmt.Sprintln(v...))
}
func (l *FnLogger) Printf(format string, v ...any) {
	l.Callback(fmt.Sprintf(format, v...))
}
func (l *FnLogger) Print(v ...any) {
	l.Callback(fmt.Sprint(v...))
}
