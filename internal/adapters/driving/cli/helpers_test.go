package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/services"
	"github.com/custodia-labs/docchat/internal/logger"
	"github.com/custodia-labs/docchat/internal/normalisers"
	"github.com/custodia-labs/docchat/internal/postprocessors"
)

const petsText = "Cats are small mammals that purr. Dogs are loyal mammals that bark. " +
	"Parrots are colourful birds that talk."

// stubLLM answers every chat with a fixed reply and records the prompt.
type stubLLM struct {
	messages []driven.ChatMessage
}

func (s *stubLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	s.messages = messages
	return "They purr.", nil
}

func (s *stubLLM) ModelName() string          { return "stub" }
func (s *stubLLM) Ping(context.Context) error { return nil }
func (s *stubLLM) Close() error               { return nil }

// stubValidator records LLM validations.
type stubValidator struct {
	err   error
	calls int
}

func (v *stubValidator) ValidateLLM(*domain.LLMSettings) error {
	v.calls++
	return v.err
}

// testServices exposes the concrete services installed for a test.
type testServices struct {
	docs      *services.DocumentService
	retrieval *services.RetrievalService
	chats     *services.ChatService
	settings  *services.SettingsService
	llm       *stubLLM
	validator *stubValidator
}

// setupTestServices installs services backed by memory stores and returns
// them. Services are removed when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	logger.SetOutput(io.Discard)

	docStore := memory.NewDocumentStore()
	llm := &stubLLM{}
	validator := &stubValidator{}

	ts := &testServices{llm: llm, validator: validator}
	ts.docs = services.NewDocumentService(docStore, normalisers.NewDefaultRegistry(), postprocessors.NewDefaultBuilder())
	ts.retrieval = services.NewRetrievalService(docStore, domain.RetrievalSettings{
		TopK:           domain.DefaultTopK,
		Threshold:      domain.DefaultThreshold,
		FallbackChunks: domain.DefaultFallbackChunks,
		VocabularySize: domain.DefaultVocabularySize,
	})
	ts.chats = services.NewChatService(memory.NewChatStore(), llm, ts.retrieval)
	ts.settings = services.NewSettingsService(memory.NewConfigStore(), validator)

	SetServices(&Services{
		Documents: ts.docs,
		Retrieval: ts.retrieval,
		Chats:     ts.chats,
		Identity:  services.NewIdentityService(memory.NewUserStore()),
		Settings:  ts.settings,
	})
	t.Cleanup(func() {
		SetServices(nil)
		logger.SetOutput(os.Stderr)
	})
	return ts
}

// upload stores content as filename for the default user.
func (ts *testServices) upload(t *testing.T, filename, content string) *domain.Document {
	t.Helper()
	result, err := ts.docs.Upload(context.Background(), &domain.RawDocument{
		OwnerID:  defaultUser,
		Filename: filename,
		Content:  []byte(content),
	})
	if err != nil {
		t.Fatalf("upload %s: %v", filename, err)
	}
	return result.Document
}

// runCLI executes the root command with args and returns the combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIWithInput(t, "", args...)
}

func runCLIWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default, since cobra keeps parsed
// values between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func subcommandNames(cmd *cobra.Command) []string {
	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	return names
}
