package lsp

import (
	"encoding/json"

	"yamlassist/internal/assist"
	"yamlassist/internal/config"
)

type settings struct {
	deindent   bool
	deprecated bool
	maxItems   int
}

func settingsFrom(cfg *config.Config) settings {
	return settings{
		deindent:   cfg.Completion.Deindent,
		deprecated: cfg.Completion.Deprecated,
		maxItems:   cfg.Completion.MaxItems,
	}
}

type lspSettings struct {
	Yamlassist struct {
		Completion struct {
			Deindent   *bool `json:"deindent"`
			Deprecated *bool `json:"deprecated"`
			MaxItems   *int  `json:"maxItems"`
		} `json:"completion"`
	} `json:"yamlassist"`
}

// applySettings merges client settings; malformed payloads are ignored.
func (s *Server) applySettings(raw any) {
	if raw == nil {
		return
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return
	}
	var ls lspSettings
	if err := json.Unmarshal(data, &ls); err != nil {
		return
	}
	c := ls.Yamlassist.Completion
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Deindent != nil {
		s.settings.deindent = *c.Deindent
	}
	if c.Deprecated != nil {
		s.settings.deprecated = *c.Deprecated
	}
	if c.MaxItems != nil && *c.MaxItems >= 0 {
		s.settings.maxItems = *c.MaxItems
	}
}

// options returns the engine options for the current settings.
func (s *Server) options() assist.Options {
	s.mu.Lock()
	opts := s.cfg.AssistOptions()
	opts.DeindentProposals = s.settings.deindent
	opts.SuggestDeprecated = s.settings.deprecated
	opts.MaxItems = s.settings.maxItems
	s.mu.Unlock()
	opts.Structure = s.structure
	return opts
}
