package service

import "github.com/rotisserie/eris"

var (
	ErrSessionNotFound  = eris.New("interview session not found or expired")
	ErrInterviewDone    = eris.New("interview already finished")
	ErrInterviewNotDone = eris.New("interview is still in progress")
	ErrAIDisabled       = eris.New("text generation provider is not configured")
)
