// Command pubky-probe checks a pubky bridge setup: it loads the
// environment, prints versions and optionally resolves a homeserver or
// serves a local test network.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pubky/pubky-ffi-go/pkg/bridge"
	"github.com/pubky/pubky-ffi-go/pkg/pubky"
	"github.com/pubky/pubky-ffi-go/pkg/pubky/testnet"
)

func main() {
	var (
		envFile = flag.String("env", ".env", "optional .env file with PUBKY_FFI_* settings")
		resolve = flag.String("resolve", "", "z32 public key whose homeserver to look up")
		useTest = flag.Bool("testnet", false, "resolve through the testnet relay")
		serve   = flag.Bool("serve-testnet", false, "run an in-process test network until interrupted")
		listen  = flag.String("listen", "127.0.0.1:15411", "listen address of -serve-testnet")
		metrics = flag.Bool("metrics", false, "print bridge metrics before exiting")
	)
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load env (%s): %v", *envFile, err)
	}

	log.Printf("pubky-ffi-go version: %s (%s)", bridge.Version().Data(), pubky.GitCommit)
	cfg, err := bridge.LoadConfig()
	if err != nil {
		log.Printf("config: %v (using defaults)", err)
	}
	log.Printf("relays: %v, testnet relay: %s", cfg.RelayList(), cfg.TestnetRelay)

	if *serve {
		serveTestnet(*listen)
		return
	}
	if *resolve != "" {
		if err := lookup(*resolve, *useTest); err != nil {
			log.Fatal(err)
		}
	}
	if *metrics {
		fmt.Print(bridge.Metrics().Data())
	}
}

func lookup(z32 string, useTestnet bool) error {
	facade := bridge.FacadeNew()
	if useTestnet {
		facade = bridge.FacadeTestnet()
	}
	if facade.IsNull() {
		return errors.New("facade construction failed")
	}
	defer bridge.FacadeFree(facade)

	user := bridge.PublicKeyFromZ32(z32)
	if user.IsNull() {
		return fmt.Errorf("malformed public key %q", z32)
	}
	defer bridge.PublicKeyFree(user)

	r := bridge.FacadeHomeserverOf(facade, user)
	if !r.OK() {
		return fmt.Errorf("resolve %s: code %d: %s", z32, r.Code(), r.Error())
	}
	if r.Data() == "" {
		fmt.Printf("%s: no homeserver published\n", z32)
		return nil
	}
	fmt.Printf("%s: homeserver %s\n", z32, r.Data())
	return nil
}

func serveTestnet(addr string) {
	tn, err := testnet.Start(testnet.WithListenAddr(addr))
	if err != nil {
		log.Fatalf("start testnet: %v", err)
	}
	defer tn.Close()
	log.Printf("homeserver %s at %s", tn.HomeserverKey(), tn.URL())
	log.Printf("relay at %s", tn.RelayURL())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}
