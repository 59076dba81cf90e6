package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/gunjanghate/chat-bot-task/models"
	"github.com/gunjanghate/chat-bot-task/session"
)

var (
	userColor  = color.New(color.FgHiYellow, color.Bold)
	botColor   = color.New(color.FgCyan, color.Bold)
	errorColor = color.New(color.FgRed)
	faintColor = color.New(color.Faint)
)

// view prints the conversation incrementally from state snapshots.
type view struct {
	out       io.Writer
	printed   int
	composing bool
	lastErr   string
}

func newView(out io.Writer) *view {
	return &view{out: out}
}

func (v *view) Render(st session.State) {
	if len(st.Messages) < v.printed {
		faintColor.Fprintln(v.out, "(last message withdrawn)")
		v.printed = len(st.Messages)
	}
	for _, msg := range st.Messages[v.printed:] {
		v.printMessage(msg)
	}
	v.printed = len(st.Messages)

	if st.Composing && !v.composing {
		faintColor.Fprintln(v.out, "bot is typing...")
	}
	v.composing = st.Composing

	if st.Err != "" && st.Err != v.lastErr {
		errorColor.Fprintln(v.out, st.Err)
	}
	v.lastErr = st.Err
}

func (v *view) printMessage(msg models.Message) {
	label, c := "you", userColor
	if msg.Role == models.RoleBot {
		label, c = "bot", botColor
	}
	c.Fprintf(v.out, "%s> ", label)
	fmt.Fprintln(v.out, msg.Content)
}
