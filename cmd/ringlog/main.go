/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/ssargent/ringlog/cmd/ringlog/cmd"
)

func main() {
	cmd.Execute()
}
