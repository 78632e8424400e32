package sse

import (
	"bufio"
	"io"
	"strings"
)

// maxLineSize — максимальная длина одной строки потока.
const maxLineSize = 1024 * 1024

// Префиксы полей.
const (
	fieldData  = "data:"
	fieldEvent = "event:"
	fieldID    = "id:"
)

// Event — одно разобранное событие потока.
type Event struct {
	// Data — значение последней строки data: (обрезанное).
	Data string `json:"data"`

	// Type — значение event: (может быть пустым).
	Type string `json:"event,omitempty"`

	// ID — значение id: (может быть пустым).
	ID string `json:"id,omitempty"`
}

// Decoder инкрементально читает строки и собирает события.
type Decoder struct {
	scanner *bufio.Scanner
	current Event
}

// NewDecoder создаёт Decoder поверх r.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &Decoder{scanner: scanner}
}

// Next возвращает следующее событие с непустым Data.
//
// Событие отдаётся только на пустой строке. При конце потока
// возвращается io.EOF, незавершённое событие отбрасывается.
func (d *Decoder) Next() (Event, error) {
	for d.scanner.Scan() {
		line := d.scanner.Text()

		if strings.TrimSpace(line) == "" {
			ev := d.current
			d.current = Event{}
			if ev.Data != "" {
				return ev, nil
			}
			continue
		}

		d.apply(line)
	}

	if err := d.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}

// apply применяет одну строку к накапливаемому событию.
func (d *Decoder) apply(line string) {
	switch {
	case strings.HasPrefix(line, fieldData):
		d.current.Data = strings.TrimSpace(line[len(fieldData):])
	case strings.HasPrefix(line, fieldEvent):
		d.current.Type = strings.TrimSpace(line[len(fieldEvent):])
	case strings.HasPrefix(line, fieldID):
		d.current.ID = strings.TrimSpace(line[len(fieldID):])
	}
}
