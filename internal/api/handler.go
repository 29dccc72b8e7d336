package api

import (
	"log"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/plundell/stabelo-elevator/internal/bank"
	"github.com/plundell/stabelo-elevator/internal/journal"
)

// Handler holds shared dependencies for API handlers. The store and recorder
// are nil when the journal is disabled; the subscription endpoints then
// report unavailable.
type Handler struct {
	bank     *bank.Bank
	store    journal.Store
	recorder *journal.Recorder
	webpush  *webpush.Options
	logger   *log.Logger
}

// NewHandler creates a new API handler.
func NewHandler(b *bank.Bank, store journal.Store, recorder *journal.Recorder, webpushOptions *webpush.Options, logger *log.Logger) *Handler {
	return &Handler{
		bank:     b,
		store:    store,
		recorder: recorder,
		webpush:  webpushOptions,
		logger:   logger,
	}
}
