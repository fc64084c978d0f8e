package main

// overridden by the Makefile via -ldflags
var (
	VERSION   = "dev"
	COMP_TIME = "unknown"
)
