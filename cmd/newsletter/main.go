package main

import (
	"github.com/seanmtli/personalnewsletter/cmd/cmd"
	"github.com/seanmtli/personalnewsletter/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
