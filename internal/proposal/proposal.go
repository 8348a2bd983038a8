// Package proposal extracts action batches from proposer output. Proposers
// rarely hand over bare JSON; the batch usually sits in a fenced code block
// between paragraphs of explanation.
package proposal

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/skovand/redline/internal/edit"
)

// ErrNoActions reports input containing no decodable action batch.
var ErrNoActions = errors.New("no action batch found")

type codeBlock struct {
	lang    string
	content string
}

// ExtractActions pulls the first decodable action batch out of input. Input
// that is already a JSON array decodes directly; otherwise the markdown is
// walked and every json-tagged or untagged fenced block is tried in order.
func ExtractActions(input []byte) ([]edit.Action, error) {
	trimmed := strings.TrimSpace(string(input))

	var directErr error
	if strings.HasPrefix(trimmed, "[") {
		actions, err := edit.DecodeActions([]byte(trimmed))
		if err == nil {
			return actions, nil
		}
		directErr = err
	}

	blocks, err := extractCodeBlocks(input)
	if err != nil {
		return nil, fmt.Errorf("parsing markdown: %w", err)
	}
	var lastErr error
	inspected := 0
	for _, block := range blocks {
		if block.lang != "" && block.lang != "json" {
			continue
		}
		content := strings.TrimSpace(block.content)
		if !strings.HasPrefix(content, "[") {
			continue
		}
		inspected++
		actions, err := edit.DecodeActions([]byte(content))
		if err == nil {
			return actions, nil
		}
		lastErr = err
	}

	if directErr != nil {
		return nil, directErr
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %d candidate blocks, last decode failure: %v", ErrNoActions, inspected, lastErr)
	}
	return nil, fmt.Errorf("%w: %d code blocks inspected", ErrNoActions, len(blocks))
}

// extractCodeBlocks collects fenced code blocks in document order from the
// markdown AST.
func extractCodeBlocks(source []byte) ([]codeBlock, error) {
	var blocks []codeBlock
	parser := goldmark.DefaultParser()
	root := parser.Parse(text.NewReader(source))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		fenced, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var block codeBlock
		if fenced.Info != nil {
			block.lang = string(fenced.Info.Text(source))
		}

		var content bytes.Buffer
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			content.Write(line.Value(source))
		}
		block.content = content.String()

		blocks = append(blocks, block)
		return ast.WalkSkipChildren, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return nil, err
	}

	return blocks, nil
}
