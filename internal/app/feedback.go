package app

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
)

// MaxFeedbackComment is the longest accepted comment, in characters.
const MaxFeedbackComment = 500

var ratingLabels = map[int]string{
	1: "😞 Necesitamos mejorar",
	2: "😐 Por debajo de lo esperado",
	3: "😊 Bien",
	4: "😃 Muy bien",
	5: "🤩 ¡Excelente!",
}

// Feedback is the opinion form.
type Feedback struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// FeedbackReceipt acknowledges a submitted opinion.
type FeedbackReceipt struct {
	Rating  int    `json:"rating"`
	Label   string `json:"label"`
	Message string `json:"message"`
}

// RatingLabel returns the caption of a 1..5 rating, or "" outside that range.
func RatingLabel(rating int) string {
	return ratingLabels[rating]
}

// SubmitFeedback records an opinion. There is no backend endpoint for it, so it is only logged.
func (app *App) SubmitFeedback(_ context.Context, fb Feedback) (*FeedbackReceipt, error) {
	label := RatingLabel(fb.Rating)
	if label == "" {
		return nil, fmt.Errorf("%w: Por favor selecciona una calificación", ErrInvalidFeedback)
	}
	if utf8.RuneCountInString(fb.Comment) > MaxFeedbackComment {
		return nil, fmt.Errorf("%w: el comentario supera %d caracteres", ErrInvalidFeedback, MaxFeedbackComment)
	}

	app.log.Info("feedback received",
		zap.Int("rating", fb.Rating),
		zap.String("comment", fb.Comment),
		zap.String("username", app.Session().Username))

	return &FeedbackReceipt{
		Rating:  fb.Rating,
		Label:   label,
		Message: "¡Gracias! Tu opinión es muy importante para nosotros.",
	}, nil
}
