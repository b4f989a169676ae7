package render

import (
	"bytes"
	"strconv"

	"github.com/John-Robertt/lircd2toml-go/internal/model"
	"gopkg.in/yaml.v3"
)

func renderYAML(records []model.ProtocolRecord) (string, error) {
	list := &yaml.Node{Kind: yaml.SequenceNode}
	for _, r := range records {
		m := &yaml.Node{Kind: yaml.MappingNode}
		m.Content = append(m.Content,
			strNode("name"), strNode(r.Name),
			strNode("protocol"), strNode(string(r.Protocol)),
		)
		for _, p := range r.Params {
			if p.IsLabel() {
				m.Content = append(m.Content, strNode(p.Key), strNode(p.Label))
				continue
			}
			m.Content = append(m.Content, strNode(p.Key), intNode(strconv.FormatInt(p.Value, 10)))
		}

		codes := &yaml.Node{Kind: yaml.MappingNode}
		entries := r.Scancodes.Entries()
		digits := hexDigits(entries)
		for _, e := range entries {
			codes.Content = append(codes.Content, intNode(formatScancode(e.Code, digits)), strNode(e.Key))
		}
		m.Content = append(m.Content, strNode("scancodes"), codes)
		list.Content = append(list.Content, m)
	}

	doc := &yaml.Node{
		Kind: yaml.DocumentNode,
		Content: []*yaml.Node{{
			Kind:    yaml.MappingNode,
			Content: []*yaml.Node{strNode("protocols"), list},
		}},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", &RenderError{
			AppError: model.AppError{
				Code:    "RENDER_ERROR",
				Message: "YAML 输出失败",
				Stage:   "render",
			},
			Cause: err,
		}
	}
	if err := enc.Close(); err != nil {
		return "", &RenderError{
			AppError: model.AppError{
				Code:    "RENDER_ERROR",
				Message: "YAML 输出失败",
				Stage:   "render",
			},
			Cause: err,
		}
	}
	return buf.String(), nil
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func intNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v}
}
