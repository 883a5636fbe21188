package rest

import (
	"encoding/json"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

// accountPayload is the body of GET /api/accounts/{account}. Records stay raw so the
// client can decode them one at a time.
type accountPayload struct {
	Username string            `json:"username"`
	Notes    []json.RawMessage `json:"notes"`
	Folders  []json.RawMessage `json:"folders"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func newAccountPayload(data core.AccountData) (accountPayload, error) {
	p := accountPayload{
		Username: data.Username,
		Notes:    make([]json.RawMessage, 0, len(data.Notes)),
		Folders:  make([]json.RawMessage, 0, len(data.Folders)),
	}
	for _, n := range data.Notes {
		raw, err := json.Marshal(n)
		if err != nil {
			return p, err
		}
		p.Notes = append(p.Notes, raw)
	}
	for _, f := range data.Folders {
		raw, err := json.Marshal(f)
		if err != nil {
			return p, err
		}
		p.Folders = append(p.Folders, raw)
	}
	return p, nil
}
