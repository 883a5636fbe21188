package platform

import (
	"fmt"

	"github.com/aretw0/introspection"
)

// ClientState aggregates the state of every component of a Client.
type ClientState struct {
	Dir         string `json:"dir"`
	Storage     string `json:"storage"`
	Format      string `json:"format"`
	Remote      string `json:"remote,omitempty"`
	Account     string `json:"account,omitempty"`
	Store       any    `json:"store"`
	Reconciler  any    `json:"reconciler"`
	Persistence any    `json:"persistence,omitempty"`
}

// State implements introspection.Introspectable.
func (c *Client) State() any {
	st := ClientState{
		Dir:        c.dir,
		Storage:    c.config.Storage,
		Format:     c.config.Format,
		Account:    c.session.AccountID(),
		Store:      c.Store.State(),
		Reconciler: c.Reconciler.State(),
	}
	if s, ok := c.gateway.(fmt.Stringer); ok {
		st.Remote = s.String()
	} else if c.gateway != nil {
		st.Remote = fmt.Sprintf("%T", c.gateway)
	}
	if p, ok := c.persistence.(introspection.Introspectable); ok {
		st.Persistence = p.State()
	}
	return st
}

// ComponentType implements introspection.Component.
func (c *Client) ComponentType() string {
	return "client"
}

var _ introspection.Introspectable = (*Client)(nil)
var _ introspection.Component = (*Client)(nil)
