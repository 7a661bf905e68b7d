package pkarr

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/dns/dnsmessage"

	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
)

const (
	// MaxPacketSize bounds sig || timestamp || message.
	MaxPacketSize = ed25519.SignatureSize + 8 + 1000

	homeserverName = "_pubky."
	endpointName   = "_endpoint."
	homeserverAttr = "hs="
	endpointAttr   = "url="

	recordTTL = 300
	txtMax    = 255
)

// SignedPacket is a record signed by the key it describes.
type SignedPacket struct {
	PublicKey keys.PublicKey
	Signature [ed25519.SignatureSize]byte
	// Timestamp in microseconds since the Unix epoch.
	Timestamp uint64
	Message   []byte
}

// Sign encodes rec as a DNS message and signs it with kp.
func Sign(kp *keys.Keypair, rec Record) (SignedPacket, error) {
	msg, err := encodeRecord(rec)
	if err != nil {
		return SignedPacket{}, err
	}
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	pkt := SignedPacket{
		PublicKey: kp.PublicKey(),
		Timestamp: uint64(ts.UnixMicro()),
		Message:   msg,
	}
	if len(pkt.Bytes()) > MaxPacketSize {
		return SignedPacket{}, fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, len(pkt.Bytes()))
	}
	copy(pkt.Signature[:], kp.Sign(signable(pkt.Timestamp, msg)))
	return pkt, nil
}

// ParseSignedPacket decodes the relay payload published for pk and verifies it.
func ParseSignedPacket(pk keys.PublicKey, b []byte) (SignedPacket, error) {
	if len(b) > MaxPacketSize {
		return SignedPacket{}, fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, len(b))
	}
	if len(b) < ed25519.SignatureSize+8 {
		return SignedPacket{}, fmt.Errorf("%w: %d bytes", ErrInvalidPacket, len(b))
	}
	pkt := SignedPacket{PublicKey: pk}
	copy(pkt.Signature[:], b[:ed25519.SignatureSize])
	pkt.Timestamp = binary.BigEndian.Uint64(b[ed25519.SignatureSize:])
	pkt.Message = append([]byte(nil), b[ed25519.SignatureSize+8:]...)
	if !pk.Verify(signable(pkt.Timestamp, pkt.Message), pkt.Signature[:]) {
		return SignedPacket{}, ErrInvalidSig
	}
	return pkt, nil
}

// Bytes returns sig || timestamp(BE) || message.
func (p SignedPacket) Bytes() []byte {
	out := make([]byte, 0, ed25519.SignatureSize+8+len(p.Message))
	out = append(out, p.Signature[:]...)
	out = binary.BigEndian.AppendUint64(out, p.Timestamp)
	return append(out, p.Message...)
}

func (p SignedPacket) Time() time.Time { return time.UnixMicro(int64(p.Timestamp)) }

// Record decodes the DNS message.
func (p SignedPacket) Record() (Record, error) {
	rec, err := decodeRecord(p.Message)
	if err != nil {
		return Record{}, err
	}
	rec.Timestamp = p.Time()
	return rec, nil
}

// signable is the bencoded dictionary {seq: ts, v: msg}.
func signable(ts uint64, msg []byte) []byte {
	var sb strings.Builder
	sb.WriteString("3:seqi")
	sb.WriteString(strconv.FormatUint(ts, 10))
	sb.WriteString("e1:v")
	sb.WriteString(strconv.Itoa(len(msg)))
	sb.WriteByte(':')
	sb.Write(msg)
	return []byte(sb.String())
}

func encodeRecord(rec Record) ([]byte, error) {
	b := dnsmessage.NewBuilder(nil, dnsmessage.Header{Response: true, Authoritative: true})
	b.EnableCompression()
	if err := b.StartAnswers(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPacket, err)
	}
	if rec.HasHomeserver() {
		if err := addTXT(&b, homeserverName, homeserverAttr+rec.Homeserver.String()); err != nil {
			return nil, err
		}
	}
	if rec.Endpoint != "" {
		if err := addTXT(&b, endpointName, endpointAttr+rec.Endpoint); err != nil {
			return nil, err
		}
	}
	msg, err := b.Finish()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPacket, err)
	}
	return msg, nil
}

func addTXT(b *dnsmessage.Builder, name, value string) error {
	if len(value) > txtMax {
		return fmt.Errorf("%w: TXT value of %d bytes", ErrPacketTooLarge, len(value))
	}
	n, err := dnsmessage.NewName(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPacket, err)
	}
	hdr := dnsmessage.ResourceHeader{Name: n, Class: dnsmessage.ClassINET, TTL: recordTTL}
	if err := b.TXTResource(hdr, dnsmessage.TXTResource{TXT: []string{value}}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPacket, err)
	}
	return nil
}

func decodeRecord(msg []byte) (Record, error) {
	var rec Record
	var p dnsmessage.Parser
	if _, err := p.Start(msg); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrInvalidPacket, err)
	}
	if err := p.SkipAllQuestions(); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrInvalidPacket, err)
	}
	for {
		h, err := p.AnswerHeader()
		if err == dnsmessage.ErrSectionDone {
			return rec, nil
		}
		if err != nil {
			return rec, fmt.Errorf("%w: %v", ErrInvalidPacket, err)
		}
		if h.Type != dnsmessage.TypeTXT {
			if err := p.SkipAnswer(); err != nil {
				return rec, fmt.Errorf("%w: %v", ErrInvalidPacket, err)
			}
			continue
		}
		txt, err := p.TXTResource()
		if err != nil {
			return rec, fmt.Errorf("%w: %v", ErrInvalidPacket, err)
		}
		value := strings.Join(txt.TXT, "")
		switch strings.ToLower(h.Name.String()) {
		case homeserverName:
			if v, ok := strings.CutPrefix(value, homeserverAttr); ok {
				hs, err := keys.ParsePublicKey(v)
				if err != nil {
					return rec, fmt.Errorf("%w: homeserver: %v", ErrInvalidPacket, err)
				}
				rec.Homeserver = hs
			}
		case endpointName:
			if v, ok := strings.CutPrefix(value, endpointAttr); ok {
				rec.Endpoint = v
			}
		}
	}
}
