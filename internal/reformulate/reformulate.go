// Package reformulate rewrites context-dependent follow-up questions into
// standalone queries suitable for embedding.
//
// The reformulator is pure reasoning-layer: it never returns an error. Any
// completion failure or suspicious rewrite falls back to the original user
// text, because an unrewritten query still retrieves something while a hard
// failure retrieves nothing.
package reformulate

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/radexhq/radex/internal/ai"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one conversation message, ordered by creation time within a
// session.
type Turn struct {
	Role    string
	Content string
}

// minRewriteLength is the shortest rewrite accepted as genuine. Anything
// shorter is treated as the completion service misfiring.
const minRewriteLength = 5

// completeTimeout bounds the rewrite call; on expiry the original text is
// used.
const completeTimeout = 15 * time.Second

const systemPrompt = `You rewrite the user's latest message into a standalone search query.
Use the conversation history only to resolve pronouns and references.
Return only the rewritten query, with no preamble and no quotes.
If the message is already self-contained, return it unchanged.`

// Reformulator rewrites follow-up questions using conversation history.
type Reformulator struct {
	completer ai.Completer
	logger    *slog.Logger
}

// New creates a Reformulator. A nil logger falls back to slog.Default().
func New(completer ai.Completer, logger *slog.Logger) *Reformulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reformulator{completer: completer, logger: logger}
}

// Reformulate returns a standalone form of the latest turn's text.
//
// With one turn (or none of the preceding context), the latest text passes
// through unchanged. Otherwise at most maxHistory turns preceding the latest
// are given to the completion service as context. The rewrite is accepted
// only when it is non-empty after trimming, at least five characters long,
// and not case-insensitively identical to the original. Anything else,
// including a completion error, falls back to the original text.
func (r *Reformulator) Reformulate(ctx context.Context, turns []Turn, maxHistory int) string {
	if len(turns) == 0 {
		return ""
	}

	latest := turns[len(turns)-1].Content
	if len(turns) <= 1 {
		return latest
	}

	history := turns[:len(turns)-1]
	if maxHistory > 0 && len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, t := range history {
		b.WriteString(t.Role)
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nLatest message: ")
	b.WriteString(latest)

	callCtx, cancel := context.WithTimeout(ctx, completeTimeout)
	defer cancel()

	rewritten, err := r.completer.Complete(callCtx, systemPrompt, b.String())
	if err != nil {
		r.logger.Warn("reformulation failed, using original query", "error", err)
		return latest
	}

	rewritten = strings.TrimSpace(rewritten)
	if !validRewrite(rewritten, latest) {
		r.logger.Debug("rewrite rejected, using original query",
			"rewrite_len", len(rewritten))
		return latest
	}

	r.logger.Debug("query reformulated", "original_len", len(latest), "rewritten_len", len(rewritten))
	return rewritten
}

// validRewrite applies the acceptance rules to a trimmed rewrite. A rewrite
// identical to the original (ignoring case) signals the service echoed its
// input rather than rewriting.
func validRewrite(rewritten, original string) bool {
	if rewritten == "" {
		return false
	}
	if len(rewritten) < minRewriteLength {
		return false
	}
	if strings.EqualFold(rewritten, original) {
		return false
	}
	return true
}
