package testnet

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
	"github.com/pubky/pubky-ffi-go/pkg/pubky/pkarr"
)

// relayRoutes serves PUT/GET /{key} from the in-memory DHT.
func relayRoutes(dht *pkarr.Memory) func(chi.Router) {
	return func(r chi.Router) {
		r.Put("/{key}", func(w http.ResponseWriter, r *http.Request) {
			pk, err := keys.ParsePublicKey(chi.URLParam(r, "key"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			body, err := io.ReadAll(io.LimitReader(r.Body, pkarr.MaxPacketSize+1))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			pkt, err := pkarr.ParseSignedPacket(pk, body)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if err := dht.Put(pkt); err != nil {
				status := http.StatusInternalServerError
				if errors.Is(err, pkarr.ErrStalePacket) {
					status = http.StatusConflict
				}
				http.Error(w, err.Error(), status)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
		r.Get("/{key}", func(w http.ResponseWriter, r *http.Request) {
			pk, err := keys.ParsePublicKey(chi.URLParam(r, "key"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			pkt, ok := dht.Get(pk)
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/pkarr.org/relays#payload")
			_, _ = w.Write(pkt.Bytes())
		})
	}
}
