package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/referee/internal/referee/cmd"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})
	logrus.SetLevel(logrus.InfoLevel)

	if err := referee(); err != nil {
		logrus.Fatal(err)
	}
}

func referee() error {
	root := cmd.Root()
	root.SetArgs(os.Args[1:])
	return root.Execute()
}
