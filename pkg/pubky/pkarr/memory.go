package pkarr

import (
	"context"
	"sync"

	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
)

// Memory is an in-process packet store. It stands in for the DHT on the
// test network and backs the testnet relay endpoint.
type Memory struct {
	mu      sync.RWMutex
	packets map[keys.PublicKey]SignedPacket
}

func NewMemory() *Memory {
	return &Memory{packets: make(map[keys.PublicKey]SignedPacket)}
}

func (m *Memory) Resolve(ctx context.Context, pk keys.PublicKey) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	pkt, ok := m.Get(pk)
	if !ok {
		return Record{}, ErrNotFound
	}
	return pkt.Record()
}

func (m *Memory) Publish(ctx context.Context, kp *keys.Keypair, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pkt, err := Sign(kp, rec)
	if err != nil {
		return err
	}
	return m.Put(pkt)
}

// Put stores an already signed packet, keeping the newest per key.
func (m *Memory) Put(pkt SignedPacket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.packets[pkt.PublicKey]; ok && cur.Timestamp > pkt.Timestamp {
		return ErrStalePacket
	}
	m.packets[pkt.PublicKey] = pkt
	return nil
}

func (m *Memory) Get(pk keys.PublicKey) (SignedPacket, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pkt, ok := m.packets[pk]
	return pkt, ok
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.packets)
}
