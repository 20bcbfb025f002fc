// Package gateway defines the narrow capability surface the bot needs from
// the messaging platform, and a REST client implementing it. The core never
// depends on the platform's full object model.
package gateway

import "context"

// CreateChannelRequest describes a private text channel visible only to the
// listed viewers (user or role ids) under an optional parent category.
type CreateChannelRequest struct {
	Name      string
	ParentID  string
	ViewerIDs []string
}

// Gateway is everything the services are allowed to do against the
// messaging platform.
type Gateway interface {
	// SendMessage posts content into a channel and returns the message id.
	SendMessage(ctx context.Context, channelID, content string) (string, error)
	// EditMessage replaces the content of an existing message. Returns
	// ErrNotFound when the message or channel no longer exists.
	EditMessage(ctx context.Context, channelID, messageID, content string) error
	// SendDirect delivers content to a user's private message channel.
	SendDirect(ctx context.Context, userID, content string) error
	CreateChannel(ctx context.Context, req CreateChannelRequest) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
}
