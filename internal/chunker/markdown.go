package chunker

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownChunker режет markdown по заголовкам, уровень выбирается по структуре документа
type MarkdownChunker struct {
	config Config
}

// NewMarkdownChunker создаёт новый markdown chunker
func NewMarkdownChunker(config Config) *MarkdownChunker {
	return &MarkdownChunker{config: config}
}

func (m *MarkdownChunker) Name() string {
	return "markdown"
}

// DocumentStructure содержит информацию о структуре документа
type DocumentStructure struct {
	HeadingCounts   map[int]int // уровень заголовка -> количество
	TotalParagraphs int
}

// minHeadings - сколько заголовков уровня нужно, чтобы резать по нему
var minHeadings = map[int]int{2: 3, 3: 5, 4: 10}

func (m *MarkdownChunker) Chunk(content, source string) ([]Chunk, error) {
	if err := m.config.Validate(); err != nil {
		return nil, err
	}

	src := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	structure := AnalyzeStructure(doc)
	level, err := SelectLevel(structure)
	if err != nil {
		return nil, fmt.Errorf("markdown chunker cannot process %s: %w", source, err)
	}

	log.Printf("📊 [%s] %s: headings=%v paragraphs=%d, splitting on H%d",
		m.Name(), source, structure.HeadingCounts, structure.TotalParagraphs, level)

	chunks, err := m.chunkByHeadings(doc, src, source, level)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ [%s] %s: %d chunks", m.Name(), source, len(chunks))
	return chunks, nil
}

// AnalyzeStructure считает заголовки по уровням и параграфы
func AnalyzeStructure(doc ast.Node) DocumentStructure {
	structure := DocumentStructure{HeadingCounts: make(map[int]int)}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			structure.HeadingCounts[node.Level]++
		case *ast.Paragraph:
			structure.TotalParagraphs++
		}
		return ast.WalkContinue, nil
	})

	return structure
}

// SelectLevel выбирает самый крупный уровень H2..H4 с достаточным числом заголовков
func SelectLevel(structure DocumentStructure) (int, error) {
	for level := 2; level <= 4; level++ {
		if structure.HeadingCounts[level] >= minHeadings[level] {
			return level, nil
		}
	}
	return 0, fmt.Errorf("no suitable markdown structure found (headings: %v, paragraphs: %d)",
		structure.HeadingCounts, structure.TotalParagraphs)
}

type section struct {
	title  string
	parent string
	level  int
	body   strings.Builder
}

// chunkByHeadings собирает секции по заголовкам targetLevel и выше,
// подзаголовки остаются внутри секции
func (m *MarkdownChunker) chunkByHeadings(doc ast.Node, content []byte, source string, targetLevel int) ([]Chunk, error) {
	var sections []*section
	cur := &section{}
	parent := ""

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if _, ok := n.(*ast.Paragraph); ok {
				cur.body.WriteString("\n\n")
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			title := headingText(node, content)
			if node.Level > targetLevel {
				cur.body.WriteString("\n" + title + "\n\n")
				return ast.WalkSkipChildren, nil
			}
			if cur.body.Len() > 0 {
				sections = append(sections, cur)
			}
			if node.Level == targetLevel {
				parent = title
			}
			cur = &section{title: title, parent: parent, level: node.Level}
			cur.body.WriteString(title + "\n\n")
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			cur.body.Write(node.Segment.Value(content))
			if node.SoftLineBreak() || node.HardLineBreak() {
				cur.body.WriteString("\n")
			}
		case *ast.String:
			cur.body.Write(node.Value)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				cur.body.Write(seg.Value(content))
			}
			cur.body.WriteString("\n")
		}
		return ast.WalkContinue, nil
	})

	if cur.body.Len() > 0 {
		sections = append(sections, cur)
	}

	var chunks []Chunk
	for _, s := range sections {
		part, err := m.finalizeSection(s, source)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, part...)
	}
	return chunks, nil
}

// finalizeSection отдаёт секцию целиком или режет её по параграфам.
// Overlap используется только для подразделов.
func (m *MarkdownChunker) finalizeSection(s *section, source string) ([]Chunk, error) {
	body := strings.TrimSpace(s.body.String())
	if body == "" {
		return nil, nil
	}

	meta := func() map[string]string {
		md := map[string]string{"level": strconv.Itoa(s.level), "method": "markdown"}
		if s.parent != "" && s.parent != s.title {
			md["parent_section"] = s.parent
		}
		return md
	}

	if runeLen(body) <= m.config.MaxChunkSize {
		return []Chunk{CreateChunk(body, source, s.title, meta())}, nil
	}

	cfg := m.config
	if s.level <= 2 {
		cfg.Overlap = 0
	}
	parts, err := NewTextChunker(cfg).Chunk(body, source)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(parts))
	for i, p := range parts {
		md := meta()
		md["part"] = strconv.Itoa(i + 1)
		md["has_parts"] = "true"
		title := s.title
		if i > 0 {
			title = fmt.Sprintf("%s (part %d)", s.title, i+1)
		}
		chunks = append(chunks, CreateChunk(p.Text, source, title, md))
	}
	return chunks, nil
}

// headingText извлекает текст заголовка
func headingText(node ast.Node, source []byte) string {
	var buf strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
