package service

import (
	"net/http"

	"food_store/internal/app"
)

type chatRequest struct {
	Text string `json:"text"`
}

func (handlers *handlers) chatHandler(res http.ResponseWriter, _ *http.Request) {
	writeJSON(res, http.StatusOK, handlers.app.Chat().Messages())
}

// sendChatHandler posts a message to the demo chat. Blank messages are ignored.
func (handlers *handlers) sendChatHandler(res http.ResponseWriter, req *http.Request) {
	var in chatRequest
	if err := readJSON(req, &in); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	added := handlers.app.Chat().Send(in.Text)
	if added == nil {
		added = []app.ChatMessage{}
	}
	writeJSON(res, http.StatusOK, added)
}

func (handlers *handlers) feedbackHandler(res http.ResponseWriter, req *http.Request) {
	var in app.Feedback
	if err := readJSON(req, &in); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := handlers.app.SubmitFeedback(req.Context(), in)
	if err != nil {
		handlers.writeAppError(res, err, app.GenericNotice)
		return
	}
	writeJSON(res, http.StatusOK, receipt)
}
