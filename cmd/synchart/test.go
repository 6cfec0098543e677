package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nihei9/synchart/tester"
	"github.com/spf13/cobra"
)

var testFlags = struct {
	config *configFlags
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "test <grammar file path> <test file path>|<test directory path>",
		Short:   "Test whether a grammar parses sentences into their expected meanings",
		Example: `  synchart test geo.synchart test`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTest,
	}
	testFlags.config = addConfigFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) (retErr error) {
	defer recoverPanic(&retErr)

	g, err := readGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a grammar: %w", err)
	}
	c, logger, err := testFlags.config.load(cmd)
	if err != nil {
		return err
	}

	var fs []*tester.TestFile
	{
		fs = tester.ListTestFiles(args[1])
		errOccurred := false
		for _, f := range fs {
			if f.Error != nil {
				fmt.Fprintf(os.Stderr, "Failed to read a test file or a directory: %v\n%v\n", f.FilePath, f.Error)
				errOccurred = true
			}
		}
		if errOccurred {
			return errors.New("Cannot run test")
		}
	}

	t := &tester.Tester{
		Grammar: g,
		Options: c.Options(logger),
		Files:   fs,
	}
	rs, err := t.Run()
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range rs {
		fmt.Fprintln(os.Stdout, r)
		if r.Error != nil {
			failed++
		}
	}
	fmt.Fprintf(os.Stdout, "%v passed, %v failed\n", len(rs)-failed, failed)
	if failed > 0 {
		return errors.New("Test failed")
	}
	return nil
}
