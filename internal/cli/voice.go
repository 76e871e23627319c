package cli

import (
	"fmt"

	"github.com/daydemir/phaser/internal/command"
	"github.com/daydemir/phaser/internal/llm"
	"github.com/daydemir/phaser/internal/osauto"
	"github.com/daydemir/phaser/internal/utils"
	"github.com/daydemir/phaser/internal/voice"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var voiceCmd = &cobra.Command{
	Use:   "voicewatch [file]",
	Short: "Relay dictated text from a file into Claude Code",
	Long: `Watch a dictation file and relay whatever is appended to it.

Each new chunk of text is interpreted by Claude into a prompt for the Claude
Code session plus desktop commands (open an app, open a file, scroll). The
commands run locally and the prompt is pasted into the frontmost terminal.

The file defaults to voice.file from the config (~/Dropbox/ai.csv).`,
	Args:          cobra.MaximumNArgs(1),
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runVoice,
}

// ExecuteVoice runs the voicewatch command
func ExecuteVoice() error {
	return execute(voiceCmd)
}

func init() {
	addGlobalFlags(voiceCmd)
	voiceCmd.Flags().String("model", "", "model used to parse dictation")
	voiceCmd.SetVersionTemplate(fmt.Sprintf("voicewatch version %s\n", version))
}

func runVoice(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	d := newDisplay()

	file := cfg.Voice.File
	if len(args) == 1 {
		file = args[0]
	}
	file = utils.ExpandHome(file)

	d.Log("Voice watcher starting...")
	d.Log("File: %s", file)
	d.Log("Parser mode: enabled")

	claude := llm.NewClaude(cfg.Claude.Binary)
	claude.Model = cfg.Claude.Model
	claude.Trace = d.Debug

	session := voice.NewSession(cfg.Voice.ContextSize)
	parser := voice.NewParser(claude, session.History, cfg.Voice.ParseTimeout, d)

	mac := osauto.NewMacOS(osauto.ExecRunner{Trace: d.Debug}, cfg.Voice.TerminalApp, cfg.Voice.PasteDelay)

	watcher := voice.NewWatcher(voice.Options{
		Fs:         afero.NewOsFs(),
		Path:       file,
		Interval:   cfg.Voice.Interval,
		Session:    session,
		Parser:     parser,
		Dispatcher: command.NewDispatcher(mac, d, cfg.Voice.DefaultScroll),
		Relay:      mac,
		Display:    d,
	})
	return watcher.Watch(cmd.Context())
}
