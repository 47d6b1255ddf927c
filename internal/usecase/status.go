package usecase

import (
	"sync"
	"time"
)

const statusLogCapacity = 32

// StatusEntry - одно статусное сообщение для отображения пользователю
type StatusEntry struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// StatusLog - небольшое кольцо статусных сообщений. Каждый переход
// контроллера геолокации и каждый терминальный исход поиска оставляют
// здесь сообщение; страница забирает их через /status.
type StatusLog struct {
	mu      sync.Mutex
	entries []StatusEntry
	now     func() time.Time
}

func NewStatusLog() *StatusLog {
	return &StatusLog{now: time.Now}
}

func (l *StatusLog) Append(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, StatusEntry{Message: message, At: l.now()})
	if len(l.entries) > statusLogCapacity {
		l.entries = l.entries[len(l.entries)-statusLogCapacity:]
	}
}

// Last возвращает последнее сообщение ("" если сообщений не было)
func (l *StatusLog) Last() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return ""
	}
	return l.entries[len(l.entries)-1].Message
}

// Snapshot возвращает копию всех сообщений в порядке появления
func (l *StatusLog) Snapshot() []StatusEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]StatusEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
