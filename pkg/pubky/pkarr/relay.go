package pkarr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
)

// DefaultRelays are the public relays used by the production network.
var DefaultRelays = []string{
	"https://pkarr.pubky.app",
	"https://pkarr.pubky.org",
}

const payloadContentType = "application/pkarr.org/relays#payload"

// Relay publishes and resolves packets through HTTP relays using
// PUT/GET <relay>/<z32>.
type Relay struct {
	relays []string
	client *http.Client
}

// NewRelay returns a relay client. A nil client uses http.DefaultClient.
func NewRelay(relays []string, client *http.Client) *Relay {
	if client == nil {
		client = http.DefaultClient
	}
	trimmed := make([]string, 0, len(relays))
	for _, r := range relays {
		if r = strings.TrimRight(strings.TrimSpace(r), "/"); r != "" {
			trimmed = append(trimmed, r)
		}
	}
	return &Relay{relays: trimmed, client: client}
}

func (r *Relay) Relays() []string { return append([]string(nil), r.relays...) }

// Publish succeeds when at least one relay accepts the packet.
func (r *Relay) Publish(ctx context.Context, kp *keys.Keypair, rec Record) error {
	pkt, err := Sign(kp, rec)
	if err != nil {
		return err
	}
	return r.PublishPacket(ctx, pkt)
}

func (r *Relay) PublishPacket(ctx context.Context, pkt SignedPacket) error {
	if len(r.relays) == 0 {
		return fmt.Errorf("%w: no relays configured", ErrRelay)
	}
	body := pkt.Bytes()
	var errs []error
	for _, relay := range r.relays {
		err := r.put(ctx, relay+"/"+pkt.PublicKey.String(), body)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("%w: %w", ErrRelay, errors.Join(errs...))
}

// Resolve returns the newest valid packet any relay knows of.
func (r *Relay) Resolve(ctx context.Context, pk keys.PublicKey) (Record, error) {
	if len(r.relays) == 0 {
		return Record{}, fmt.Errorf("%w: no relays configured", ErrRelay)
	}
	var (
		best  SignedPacket
		found bool
		errs  []error
	)
	for _, relay := range r.relays {
		pkt, ok, err := r.get(ctx, relay+"/"+pk.String(), pk)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok && (!found || pkt.Timestamp > best.Timestamp) {
			best, found = pkt, true
		}
	}
	if found {
		return best.Record()
	}
	if len(errs) == len(r.relays) {
		return Record{}, fmt.Errorf("%w: %w", ErrRelay, errors.Join(errs...))
	}
	return Record{}, ErrNotFound
}

func (r *Relay) put(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", payloadContentType)
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("PUT %s: status %d", url, resp.StatusCode)
	}
	return nil
}

func (r *Relay) get(ctx context.Context, url string, pk keys.PublicKey) (SignedPacket, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return SignedPacket{}, false, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return SignedPacket{}, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return SignedPacket{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return SignedPacket{}, false, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPacketSize+1))
	if err != nil {
		return SignedPacket{}, false, err
	}
	pkt, err := ParseSignedPacket(pk, body)
	if err != nil {
		return SignedPacket{}, false, fmt.Errorf("GET %s: %w", url, err)
	}
	return pkt, true, nil
}
