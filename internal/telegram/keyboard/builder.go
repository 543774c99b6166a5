package keyboard

import (
	"strconv"

	"github.com/futig/mitr-backend/internal/catalog"
	"github.com/futig/mitr-backend/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// StartKeyboard creates the initial start button
func (b *Builder) StartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Start", EncodeCallback(ActionControl, ValueStart)),
		),
	)
}

// SkipKeyboard lets the user leave an optional profile field empty
func (b *Builder) SkipKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭ Skip", EncodeCallback(ActionControl, ValueSkip)),
		),
	)
}

// AssessmentKeyboard lists the offered assessments, the recommended one marked and first
func (b *Builder) AssessmentKeyboard(offered []entity.AssessmentID, recommended entity.AssessmentID) tgbotapi.InlineKeyboardMarkup {
	if len(offered) == 0 {
		offered = catalog.Offer(recommended)
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(offered))
	for _, id := range offered {
		a, ok := catalog.Assessment(id)
		if !ok {
			continue
		}
		label := a.Name
		if id == recommended {
			label = "⭐ " + label + " (recommended)"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, EncodeCallback(ActionAssessment, string(id))),
		))
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// OptionsKeyboard shows one button per answer option
func (b *Builder) OptionsKeyboard(options []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options))
	for i, option := range options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(option, EncodeCallback(ActionAnswer, strconv.Itoa(i))),
		))
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ResultsKeyboard creates the email, download and start over buttons
func (b *Builder) ResultsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📧 Email me", EncodeCallback(ActionControl, ValueEmail)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Download .md", EncodeCallback(ActionDownload, string(entity.FormatMarkdown))),
			tgbotapi.NewInlineKeyboardButtonData("📕 Download .pdf", EncodeCallback(ActionDownload, string(entity.FormatPDF))),
			tgbotapi.NewInlineKeyboardButtonData("📘 Download .docx", EncodeCallback(ActionDownload, string(entity.FormatDOCX))),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Start over", EncodeCallback(ActionControl, ValueRestart)),
		),
	)
}

// StartOverKeyboard is the only way out of the error overlay
func (b *Builder) StartOverKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Start over", EncodeCallback(ActionControl, ValueRestart)),
		),
	)
}

// ConfirmRestartKeyboard asks before discarding progress
func (b *Builder) ConfirmRestartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes, start over", EncodeCallback(ActionConfirm, ValueRestart)),
			tgbotapi.NewInlineKeyboardButtonData("❌ No, continue", EncodeCallback(ActionConfirm, ValueContinue)),
		),
	)
}
