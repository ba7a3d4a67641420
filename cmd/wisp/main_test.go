package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWispCommand(t *testing.T) {
	req := require.New(t)
	cmd := NewWispCommand()

	req.Equal("wisp", cmd.Use)
	req.NotNil(cmd.PersistentFlags().Lookup("env"))
	req.NotNil(cmd.PersistentFlags().Lookup("as"))

	for _, name := range []string{"chat", "contacts", "dashboard", "support", "inspect"} {
		sub, _, err := cmd.Find([]string{name})
		req.NoError(err, name)
		req.NotNil(sub.RunE, name)
	}
}

func TestChatCommand_Requires_Peer(t *testing.T) {
	req := require.New(t)
	cmd := NewWispCommand()
	cmd.SetArgs([]string{"chat"})

	err := cmd.Execute()

	req.ErrorContains(err, "peer")
}

func TestSupportCommand_Requires_Text(t *testing.T) {
	req := require.New(t)
	cmd := NewWispCommand()
	cmd.SetArgs([]string{"support"})

	err := cmd.Execute()

	req.Error(err)
}

func TestResolveLocal(t *testing.T) {
	req := require.New(t)
	configured := "u2"

	req.Equal("u1", string(resolveLocal("u1", &configured)))
	req.Equal("u2", string(resolveLocal("", &configured)))
	req.NotEmpty(resolveLocal("", nil))
	req.NotEqual(resolveLocal("", nil), resolveLocal("", nil))
}
