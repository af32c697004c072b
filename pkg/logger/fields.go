package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// Field is a typed structured-logging attribute.
type Field interface {
	AddTo(event *zerolog.Event)
}

type stringField struct {
	key   string
	value string
}

func (f stringField) AddTo(event *zerolog.Event) { event.Str(f.key, f.value) }

type intField struct {
	key   string
	value int
}

func (f intField) AddTo(event *zerolog.Event) { event.Int(f.key, f.value) }

type float64Field struct {
	key   string
	value float64
}

func (f float64Field) AddTo(event *zerolog.Event) { event.Float64(f.key, f.value) }

type errorField struct {
	value error
}

func (f errorField) AddTo(event *zerolog.Event) { event.Err(f.value) }

type anyField struct {
	key   string
	value interface{}
}

func (f anyField) AddTo(event *zerolog.Event) { event.Interface(f.key, f.value) }

type durationField struct {
	key   string
	value time.Duration
}

func (f durationField) AddTo(event *zerolog.Event) { event.Dur(f.key, f.value) }

type boolField struct {
	key   string
	value bool
}

func (f boolField) AddTo(event *zerolog.Event) { event.Bool(f.key, f.value) }

type stringsField struct {
	key   string
	value []string
}

func (f stringsField) AddTo(event *zerolog.Event) { event.Strs(f.key, f.value) }

// Field constructors.

func String(key, value string) Field { return stringField{key, value} }
func Strings(key string, value []string) Field { return stringsField{key, value} }
func Int(key string, value int) Field { return intField{key, value} }
func Float64(key string, value float64) Field { return float64Field{key, value} }
func Error(err error) Field { return errorField{err} }
func Any(key string, value interface{}) Field { return anyField{key, value} }
func Duration(key string, value time.Duration) Field { return durationField{key, value} }
func Bool(key string, value bool) Field { return boolField{key, value} }
