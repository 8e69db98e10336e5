package server

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/stylegen/internal/logging"
)

// FrameRecord is one captured frame
type FrameRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	MessageNum int       `json:"message_num"`
	RemoteAddr string    `json:"remote_addr"`
	Direction  string    `json:"direction"`
	FrameType  string    `json:"frame_type"`
	PayloadLen int       `json:"payload_length"`
	Payload    string    `json:"payload,omitempty"`     // text frames
	PayloadHex string    `json:"payload_hex,omitempty"` // binary frames
}

// capture appends frames to a JSON Lines file. A nil capture records nothing.
type capture struct {
	path string

	mu    sync.Mutex
	count int
}

func newCapture(dir string) *capture {
	name := fmt.Sprintf("capture-%s.jsonl", time.Now().Format("20060102-150405"))
	return &capture{path: filepath.Join(dir, name)}
}

func (c *capture) record(remoteAddr, direction string, msgType int, data []byte) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.count++
	rec := FrameRecord{
		Timestamp:  time.Now(),
		MessageNum: c.count,
		RemoteAddr: remoteAddr,
		Direction:  direction,
		PayloadLen: len(data),
	}
	if msgType == websocket.TextMessage {
		rec.FrameType = "text"
		rec.Payload = string(data)
	} else {
		rec.FrameType = "binary"
		rec.PayloadHex = hex.EncodeToString(data)
	}

	line, err := json.Marshal(rec)
	if err != nil {
		logging.Error("Failed to marshal frame record", zap.Error(err))
		return
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		logging.Error("Failed to create capture directory", zap.Error(err))
		return
	}
	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logging.Error("Failed to open capture file",
			zap.String("filename", c.path),
			zap.Error(err),
		)
		return
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		logging.Error("Failed to write capture file",
			zap.String("filename", c.path),
			zap.Error(err),
		)
	}
}
