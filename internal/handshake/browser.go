package handshake

import (
	"github.com/zitadel/oidc/v3/pkg/client/rp/cli"
)

//go:generate mockgen -source=browser.go -destination=../mocks/browser.go -package=mocks

type Browser interface {
	Open(url string) error
}

// SystemBrowser opens URLs with the platform's default browser. Opening is
// best effort and returns before the page loads.
type SystemBrowser struct{}

func (SystemBrowser) Open(url string) error {
	cli.OpenBrowser(url)
	return nil
}
