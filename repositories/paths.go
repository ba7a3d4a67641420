package repositories

import (
	"fmt"
	"wisp/domain"
)

// Paths builds the store collections of one application namespace.
type Paths struct {
	namespace string
}

func NewPaths(appID string) Paths {
	return Paths{namespace: fmt.Sprintf("artifacts/%s/public/data", appID)}
}

func (p Paths) Namespace() string {
	return p.namespace
}

func (p Paths) Users() string {
	return p.namespace + "/users"
}

func (p Paths) Messages(key domain.ChannelKey) string {
	return fmt.Sprintf("%s/chats/%s/messages", p.namespace, key)
}
