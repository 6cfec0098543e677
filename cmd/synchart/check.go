package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "check <grammar file path>",
		Short:   "Check whether a grammar is valid",
		Example: `  synchart check geo.synchart`,
		Args:    cobra.ExactArgs(1),
		RunE:    runCheck,
	}
	rootCmd.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, args []string) (retErr error) {
	defer recoverPanic(&retErr)

	gram, err := readGrammar(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%v: %v non-terminals, %v productions, %v rules\n",
		gram.Name(), gram.CountNonterminals(), len(gram.Productions()), len(gram.Rules())-1)

	return nil
}
