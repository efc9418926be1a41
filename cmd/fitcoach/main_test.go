package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Desarso/fitcoach/models"
	"github.com/Desarso/fitcoach/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmdFor(&app{logger: zap.NewNop()})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fitcoach dev")
	assert.Contains(t, out, "commit: none")
}

func TestRootCmdHelp(t *testing.T) {
	out, err := run(t, "", "--help")
	require.NoError(t, err)
	for _, sub := range []string{"serve", "chat", "tip", "profile", "version"} {
		assert.Contains(t, out, sub)
	}
}

func writeConfig(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "API_KEY", "FITCOACH_DB_TYPE", "FITCOACH_DB_DSN", "FITCOACH_ADDR"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "fitcoach.yaml")
	cfg := "store:\n  type: sqlite\n  connection: " + filepath.Join(dir, "cli.sqlite") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

const profileYAML = `name: Rami
age: 40
weight: 95
height: 178
gender: male
goal: lose_weight
activity_level: sedentary
workout_preference: home
dietary_restrictions: lactose
language: ar
budget: cheap
target_weight: 85
target_timeline: 16
cheat_day: fri
`

func TestProfileCommands(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "", "--config", cfg, "profile", "show")
	assert.Error(t, err, "nothing stored yet")

	out, err := run(t, profileYAML, "--config", cfg, "profile", "set")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile saved for Rami")

	out, err = run(t, "", "--config", cfg, "profile", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Rami")
	assert.Contains(t, out, "activity_level: sedentary")
	assert.Contains(t, out, "cheat_day: fri")

	out, err = run(t, "", "--config", cfg, "profile", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile cleared")

	_, err = run(t, "", "--config", cfg, "profile", "show")
	assert.Error(t, err)
}

func TestProfileSetRejectsInvalid(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, strings.Replace(profileYAML, "goal: lose_weight", "goal: fly", 1), "--config", cfg, "profile", "set")
	assert.ErrorContains(t, err, "invalid goal")

	file := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, os.WriteFile(file, []byte(profileYAML), 0o644))
	out, err := run(t, "", "--config", cfg, "profile", "set", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Rami")
}

const profileJSON = `{"name":"Rami","age":40,"weight":95,"height":178,"gender":"male","goal":"lose_weight",
"activityLevel":"sedentary","workoutPreference":"home","dietaryRestrictions":"lactose","language":"ar",
"budget":"cheap","targetWeight":85,"targetTimeline":16,"cheatDay":"fri"}`

func TestProfileSetJSON(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, profileJSON, "--config", cfg, "profile", "set")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile saved for Rami")

	out, err = run(t, "", "--config", cfg, "profile", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "activity_level: sedentary")
	assert.Contains(t, out, "workout_preference: home")
	assert.Contains(t, out, "target_weight: 85")
	assert.Contains(t, out, "target_timeline: 16")
}

type echoDispatcher struct{}

func (echoDispatcher) Dispatch(_ context.Context, req models.GenerationRequest, _ []models.HistoryEntry, _ *models.Profile) (models.Reply, error) {
	return models.Reply{Mode: models.ModeChat, Text: "coach heard: " + req.Text}, nil
}

func TestChatLoop(t *testing.T) {
	conv := sessions.NewConversation(&models.Profile{Name: "Rami", Goal: models.GoalLoseWeight}, echoDispatcher{})
	defer conv.Close()

	out := new(bytes.Buffer)
	in := strings.NewReader("squats or lunges?\n\n/quit\nnever sent\n")
	require.NoError(t, chatLoop(context.Background(), conv, in, out))

	assert.Contains(t, out.String(), "coach: Hi Rami!")
	assert.Contains(t, out.String(), "coach: coach heard: squats or lunges?")
	assert.NotContains(t, out.String(), "never sent")
	assert.Len(t, conv.History(), 2)
}

func TestPromptKeyRequiresTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer f.Close()

	_, err = promptKey(f, new(bytes.Buffer))(context.Background())
	assert.ErrorIs(t, err, errNotTerminal)
}
