package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// MoveEvent is one accepted block move
type MoveEvent struct {
	MoveNumber int     `json:"move"`
	Level      int     `json:"level"`
	Sweep      int     `json:"sweep"`
	Node       int     `json:"node"`
	FromBlock  int     `json:"from_block"`
	ToBlock    int     `json:"to_block"`
	Delta      float64 `json:"entropy_delta"`
	ProbRatio  float64 `json:"prob_ratio"`
	Entropy    float64 `json:"entropy"`
	Timestamp  int64   `json:"timestamp"`
}

// MoveTracker appends accepted moves to a JSON lines file. A nil tracker
// ignores every call.
type MoveTracker struct {
	file    *os.File
	encoder *json.Encoder
	moves   int
}

func NewMoveTracker(filename string) (*MoveTracker, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("creating move log: %w", err)
	}

	return &MoveTracker{
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

// LogMove numbers the event and writes it out
func (mt *MoveTracker) LogMove(event MoveEvent) error {
	if mt == nil {
		return nil
	}

	mt.moves++
	event.MoveNumber = mt.moves
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	return mt.encoder.Encode(event)
}

// Moves is the number of events written so far
func (mt *MoveTracker) Moves() int {
	if mt == nil {
		return 0
	}
	return mt.moves
}

func (mt *MoveTracker) Close() error {
	if mt == nil || mt.file == nil {
		return nil
	}
	return mt.file.Close()
}
