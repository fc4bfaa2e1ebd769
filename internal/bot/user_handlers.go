package bot

import (
	"context"
	"strings"

	"boardeasy/internal/events"
	"boardeasy/internal/models"
	"boardeasy/internal/session"
)

func (b *Bot) saveSession(ctx context.Context, chatID int64, token string, user models.User) error {
	sess := &session.Context{ChatID: chatID, Token: token, User: user}
	if err := b.sessions.Save(ctx, sess); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to save session")
		return err
	}
	return nil
}

func (b *Bot) publishUserRegistered(chatID int64, username string) {
	if err := b.eventBus.PublishJSON(events.EventUserRegistered, map[string]interface{}{
		"chat_id":  chatID,
		"username": username,
	}); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to publish user_registered")
	}
}

func (b *Bot) startProfileUpdate(ctx context.Context, chatID int64) {
	if b.requireSession(ctx, chatID) == nil {
		return
	}
	state := b.states.get(chatID)
	state.Mode = modeProfileUpdate
	b.sendMessage(chatID, "Send your new contact details as: email, phone\nLeave a field empty to keep it, e.g. \", +911234567890\".")
}

func (b *Bot) finishProfileUpdate(ctx context.Context, chatID int64, text string, state *chatState) {
	state.Mode = modeNone

	sess := b.requireSession(ctx, chatID)
	if sess == nil {
		return
	}

	parts := strings.SplitN(text, ",", 2)
	update := models.ProfileUpdate{Email: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		update.Phone = strings.TrimSpace(parts[1])
	}
	if update.Email == "" && update.Phone == "" {
		b.sendMessage(chatID, "Nothing to update.")
		return
	}

	user, err := b.client.WithAuth(sess.Token).UpdateProfile(ctx, update)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if err := b.saveSession(ctx, chatID, sess.Token, *user); err == nil {
		b.sendMessage(chatID, "Profile updated.")
	}
}

func (b *Bot) startChangePassword(ctx context.Context, chatID int64) {
	if b.requireSession(ctx, chatID) == nil {
		return
	}
	state := b.states.get(chatID)
	state.Mode = modeChangePassword
	b.sendMessage(chatID, "Send: current password, new password (comma separated).")
}

func (b *Bot) finishChangePassword(ctx context.Context, chatID int64, text string, state *chatState) {
	state.Mode = modeNone

	sess := b.requireSession(ctx, chatID)
	if sess == nil {
		return
	}

	parts := strings.SplitN(text, ",", 2)
	if len(parts) != 2 {
		b.sendMessage(chatID, "Expected two values: current password, new password.")
		return
	}
	oldPass := strings.TrimSpace(parts[0])
	newPass := strings.TrimSpace(parts[1])
	if oldPass == "" || newPass == "" {
		b.sendMessage(chatID, "Both passwords are required.")
		return
	}

	if err := b.client.WithAuth(sess.Token).ChangePassword(ctx, oldPass, newPass); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, "Password changed.")
}
