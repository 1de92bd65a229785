// Package journal writes one JSON line per executed extrinsic.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/palletchain/internal/runtime"
	"github.com/goodnatureofminers/palletchain/internal/runtime/model"
	"github.com/goodnatureofminers/palletchain/pkg/batcher"
	"go.uber.org/zap"
)

const (
	defaultFlushSize     = 256
	defaultFlushInterval = time.Second
)

var _ runtime.EventSink = (*Journal)(nil)

// Entry is the journal form of a runtime.Event.
type Entry struct {
	ID     string            `json:"id"`
	Block  model.BlockNumber `json:"block"`
	Index  int               `json:"index"`
	Caller model.AccountID   `json:"caller"`
	Pallet string            `json:"pallet"`
	Call   string            `json:"call"`
	Error  string            `json:"error,omitempty"`
}

// NewEntry converts event and derives its id.
func NewEntry(event runtime.Event) Entry {
	e := Entry{
		Block:  event.BlockNumber,
		Index:  event.Index,
		Caller: event.Caller,
		Pallet: event.Pallet,
		Call:   event.Call,
	}
	if event.Err != nil {
		e.Error = event.Err.Error()
	}
	e.ID = entryID(e)
	return e
}

// entryID is the double SHA-256 of the entry's fields, length-prefixed so
// that no two distinct entries share an encoding.
func entryID(e Entry) string {
	canonical := fmt.Sprintf("%d:%d:%d:%s%d:%s%d:%s%d:%s",
		e.Block, e.Index,
		len(e.Caller), e.Caller,
		len(e.Pallet), e.Pallet,
		len(e.Call), e.Call,
		len(e.Error), e.Error,
	)
	return chainhash.DoubleHashH([]byte(canonical)).String()
}

// Journal buffers events and flushes them to a writer in batches.
type Journal struct {
	ctx     context.Context
	logger  *zap.Logger
	enc     *json.Encoder
	batcher *batcher.Batcher[Entry]
}

// New builds a Journal writing to w. Writes happen on the batcher goroutine only.
func New(ctx context.Context, w io.Writer, logger *zap.Logger) *Journal {
	if logger == nil {
		logger = zap.NewNop()
	}
	j := &Journal{
		ctx:    ctx,
		logger: logger,
		enc:    json.NewEncoder(w),
	}
	j.batcher = batcher.New(logger.Named("batcher"), j.flush, defaultFlushSize, defaultFlushInterval, 0)
	return j
}

func (j *Journal) Start() {
	j.batcher.Start(j.ctx)
}

// Stop flushes everything recorded so far.
func (j *Journal) Stop() {
	j.batcher.Stop()
}

// Record queues event for writing.
func (j *Journal) Record(event runtime.Event) {
	entry := NewEntry(event)
	if err := j.batcher.Add(j.ctx, entry); err != nil {
		j.logger.Warn("journal entry dropped",
			zap.Uint32("block", uint32(entry.Block)),
			zap.Int("extrinsic", entry.Index),
			zap.Error(err),
		)
	}
}

func (j *Journal) flush(_ context.Context, entries []Entry) error {
	for _, e := range entries {
		if err := j.enc.Encode(e); err != nil {
			return fmt.Errorf("write journal entry %s: %w", e.ID, err)
		}
	}
	return nil
}
