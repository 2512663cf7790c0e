package io

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/seqr/internal/model"
)

func TestLibraryYAMLRepository_GetLibrary(t *testing.T) {
	tests := map[string]struct {
		fs     fstest.MapFS
		path   string
		expLib model.Library
		expErr bool
		errMsg string
	}{
		"Valid library with positions and sequences should load successfully": {
			fs: fstest.MapFS{
				"library.yaml": &fstest.MapFile{
					Data: []byte(`positions:
  - name: spawn
    x: 120
    y: 340
  - name: inventory
    x: 800
    y: 60
sequences:
  - name: farm-loop
    description: Farm the east field
    loop: true
    step_delay_ms: 250
    actions:
      - click:
          position: spawn
      - wait:
          duration_ms: 500
      - template_search:
          templates: [enemy]
          confidence: 0.9
          timeout_ms: 5000
          notify: true
      - wait_for_text:
          text: victory
          partial: true
          timeout_ms: 10000
          region:
            x: 10
            y: 20
            width: 300
            height: 50
`),
				},
			},
			path: "library.yaml",
			expLib: model.Library{
				Positions: []model.Position{
					{Name: "spawn", X: 120, Y: 340},
					{Name: "inventory", X: 800, Y: 60},
				},
				Sequences: []model.Sequence{
					{
						Name:        "farm-loop",
						Description: "Farm the east field",
						Loop:        true,
						StepDelay:   250 * time.Millisecond,
						Actions: []model.Action{
							{Kind: model.ActionKindClick, Click: &model.ClickParams{Position: "spawn"}},
							{Kind: model.ActionKindWait, Wait: &model.WaitParams{Duration: 500 * time.Millisecond}},
							{Kind: model.ActionKindTemplateSearch, TemplateSearch: &model.TemplateSearchParams{
								Templates:     []string{"enemy"},
								Confidence:    0.9,
								Timeout:       5 * time.Second,
								NotifyOnMatch: true,
							}},
							{Kind: model.ActionKindWaitForText, WaitForText: &model.WaitForTextParams{
								Text:    "victory",
								Partial: true,
								Timeout: 10 * time.Second,
								Region:  &model.Region{X: 10, Y: 20, Width: 300, Height: 50},
							}},
						},
					},
				},
			},
		},

		"A library with only positions should load successfully": {
			fs: fstest.MapFS{
				"positions.yaml": &fstest.MapFile{
					Data: []byte(`positions:
  - name: spawn
    x: 1
    y: 2
`),
				},
			},
			path: "positions.yaml",
			expLib: model.Library{
				Positions: []model.Position{{Name: "spawn", X: 1, Y: 2}},
			},
		},

		"Missing file should return error": {
			fs:     fstest.MapFS{},
			path:   "nonexistent.yaml",
			expErr: true,
			errMsg: "reading library file",
		},

		"Invalid YAML should return error": {
			fs: fstest.MapFS{
				"invalid.yaml": &fstest.MapFile{
					Data: []byte(`invalid: yaml: content: {}`),
				},
			},
			path:   "invalid.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},

		"A sequence without actions should return error": {
			fs: fstest.MapFS{
				"library.yaml": &fstest.MapFile{
					Data: []byte(`sequences:
  - name: empty
    actions: []
`),
				},
			},
			path:   "library.yaml",
			expErr: true,
			errMsg: "at least one action is required",
		},

		"An action with two types should return error": {
			fs: fstest.MapFS{
				"library.yaml": &fstest.MapFile{
					Data: []byte(`sequences:
  - name: bad
    actions:
      - click:
          position: spawn
        wait:
          duration_ms: 100
`),
				},
			},
			path:   "library.yaml",
			expErr: true,
			errMsg: "only one action type",
		},

		"An action with no type should return error": {
			fs: fstest.MapFS{
				"library.yaml": &fstest.MapFile{
					Data: []byte(`sequences:
  - name: bad
    actions:
      - {}
`),
				},
			},
			path:   "library.yaml",
			expErr: true,
			errMsg: "exactly one action type",
		},

		"Duplicated position names should return error": {
			fs: fstest.MapFS{
				"library.yaml": &fstest.MapFile{
					Data: []byte(`positions:
  - name: spawn
    x: 1
    y: 2
  - name: spawn
    x: 3
    y: 4
`),
				},
			},
			path:   "library.yaml",
			expErr: true,
			errMsg: "duplicated position",
		},

		"An empty library should return error": {
			fs: fstest.MapFS{
				"empty.yaml": &fstest.MapFile{
					Data: []byte(`---
`),
				},
			},
			path:   "empty.yaml",
			expErr: true,
			errMsg: "library is empty",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewLibraryYAMLRepository(tc.fs)
			lib, err := repo.GetLibrary(context.Background(), tc.path)

			if tc.expErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expLib, stripTimestamps(lib))
		})
	}
}

// stripTimestamps clears the load time stamps so fixtures can be compared.
func stripTimestamps(lib model.Library) model.Library {
	for i := range lib.Positions {
		lib.Positions[i].UpdatedAt = time.Time{}
	}
	for i := range lib.Sequences {
		lib.Sequences[i].CreatedAt = time.Time{}
		lib.Sequences[i].UpdatedAt = time.Time{}
	}
	return lib
}

func TestEncodeDecodeActions(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	actions := []model.Action{
		{Kind: model.ActionKindDoubleClick, Click: &model.ClickParams{Position: "chest"}},
		{Kind: model.ActionKindDrag, Drag: &model.DragParams{From: "a", To: "b", Duration: 300 * time.Millisecond}},
		{Kind: model.ActionKindTypeText, TypeText: &model.TypeTextParams{Text: "gg", Position: "chat"}},
		{Kind: model.ActionKindTemplateSearch, TemplateSearch: &model.TemplateSearchParams{
			AllTemplates:   true,
			Confidence:     0.85,
			Timeout:        2 * time.Second,
			AbortOnNoMatch: true,
		}},
	}

	data, err := EncodeActions(actions)
	require.NoError(err)

	decoded, err := DecodeActions(data)
	require.NoError(err)
	assert.Equal(actions, decoded)
}

func TestEncodeActionsUnknownKind(t *testing.T) {
	assert := assert.New(t)

	_, err := EncodeActions([]model.Action{{Kind: "teleport"}})

	assert.Error(err)
	assert.Contains(err.Error(), "unknown action kind")
}
