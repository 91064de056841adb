package dummydb

import (
	"sync"

	"github.com/trezcool/agenda/core/event"
)

type (
	DB struct {
		event *eventTable
	}

	eventTable struct {
		sync.RWMutex
		table map[string]*event.Document
	}
)

func Open() (*DB, error) {
	db := &DB{
		event: &eventTable{table: make(map[string]*event.Document)},
	}
	return db, nil
}
