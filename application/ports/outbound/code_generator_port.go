package outbound

import (
	"context"

	"github.com/hargunmujral/3brown1blue/domain"
)

// CodeGeneratorPort asks the language model for the next animation program
// given the scene's conversation so far. The returned text may still carry
// code-fence markup; stripping it is the caller's concern.
type CodeGeneratorPort interface {
	Generate(ctx context.Context, messages []domain.ChatMessage) (string, error)
}
