package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
)

func TestRegistry_Register_Apply(t *testing.T) {
	out := &bytes.Buffer{}
	Register(&cobra.Command{
		Use: "test:registry",
		Run: func(c *cobra.Command, args []string) {
			c.Print("ok")
		},
	})
	Apply()
	Apply()

	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"test:registry"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.String() != "ok" {
		t.Errorf("output = %q, want ok", out.String())
	}
}

func TestRootCommands(t *testing.T) {
	want := map[string]bool{"cron:start": false, "products:import": false, "catalog:export": false, "db:migrate": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %s not registered", name)
		}
	}
}
