package main

import "github.com/forPelevin/autotube/internal/cli"

func main() { cli.Main() }
