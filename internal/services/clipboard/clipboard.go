// Package clipboard places rendered tree output on the system clipboard.
package clipboard

import (
	"github.com/atotto/clipboard"
)

// Copier receives rendered output destined for the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service is the atotto/clipboard backed Copier the --copy flag uses.
type Service struct{}

// NewService returns a ready clipboard Service.
func NewService() *Service {
	return &Service{}
}

// Copy places text on the system clipboard.
func (service *Service) Copy(text string) error {
	return clipboard.WriteAll(text)
}

var _ Copier = (*Service)(nil)
