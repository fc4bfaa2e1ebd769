package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type paginationParams struct {
	ChatID       int64
	MessageID    int // 0 if new message
	Page         int
	TotalPages   int
	Title        string
	PagePrefix   string
	BackCallback string
}

// renderPaginatedList draws one page of a derived view with prev/next
// navigation. The caller already sliced the items through the view engine;
// this only renders.
func (b *Bot) renderPaginatedList(params paginationParams, content string, keyboard [][]tgbotapi.InlineKeyboardButton) {
	var message strings.Builder
	message.WriteString(fmt.Sprintf("%s\n\n", params.Title))
	if params.TotalPages > 1 {
		message.WriteString(fmt.Sprintf("Page %d of %d\n\n", params.Page+1, params.TotalPages))
	}
	message.WriteString(content)

	var navButtons []tgbotapi.InlineKeyboardButton
	if params.Page > 0 {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("⬅️ Prev", fmt.Sprintf("%s%d", params.PagePrefix, params.Page-1)))
	}
	if params.Page+1 < params.TotalPages {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("Next ➡️", fmt.Sprintf("%s%d", params.PagePrefix, params.Page+1)))
	}
	if len(navButtons) > 0 {
		keyboard = append(keyboard, navButtons)
	}

	if params.BackCallback != "" {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", params.BackCallback),
		})
	}

	if len(keyboard) == 0 {
		b.sendMessage(params.ChatID, message.String())
		return
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)

	if params.MessageID != 0 {
		editMsg := tgbotapi.NewEditMessageTextAndMarkup(
			params.ChatID,
			params.MessageID,
			message.String(),
			markup,
		)
		if _, err := b.tgService.Send(editMsg); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", params.ChatID).Msg("Failed to edit paginated list")
		}
		return
	}

	msg := tgbotapi.NewMessage(params.ChatID, message.String())
	msg.ReplyMarkup = markup
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", params.ChatID).Msg("Failed to send paginated list")
	}
}
