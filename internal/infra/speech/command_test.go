package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVoiceList(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected []Voice
	}{
		{
			name:     "empty output",
			output:   "",
			expected: []Voice{},
		},
		{
			name:     "header only",
			output:   "Pty Language Age/Gender VoiceName          File          Other Languages\n",
			expected: []Voice{},
		},
		{
			name: "espeak style listing",
			output: "Pty Language Age/Gender VoiceName          File          Other Languages\n" +
				" 5  en-GB          M  english             gmw/en\n" +
				" 5  en-US          M  english-us          gmw/en-US\n" +
				"\n",
			expected: []Voice{
				{Name: "english", Language: "en-GB"},
				{Name: "english-us", Language: "en-US"},
			},
		},
		{
			name: "short lines skipped",
			output: "header\n" +
				"bad line\n" +
				" 5  fr-FR          M  french              roa/fr\n",
			expected: []Voice{
				{Name: "french", Language: "fr-FR"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseVoiceList(tt.output))
		})
	}
}

func TestNewCommandDevice_Settings(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		wantErr  bool
	}{
		{
			name:     "defaults",
			settings: map[string]any{},
			wantErr:  false,
		},
		{
			name: "explicit command",
			settings: map[string]any{
				"command":    "say",
				"voice_flag": "-v",
				"args":       []string{"-r", "200"},
			},
			wantErr: false,
		},
		{
			name: "malformed settings",
			settings: map[string]any{
				"args": 12,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewCommandDevice(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, d)
		})
	}
}

func TestNew_UnsupportedType(t *testing.T) {
	_, err := New("cloud", nil)
	assert.Error(t, err)
}

func TestNew_NoopFallbackType(t *testing.T) {
	d, err := New("", nil)
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestNoop_SpeakCompletesImmediately(t *testing.T) {
	d := NewNoopDevice()

	require.NoError(t, d.Speak(Utterance{Text: "hello"}))

	ev := <-d.Events()
	assert.Equal(t, EventStart, ev.Type)
	ev = <-d.Events()
	assert.Equal(t, EventEnd, ev.Type)
}
