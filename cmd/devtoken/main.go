// devtoken 为本地联调签发 bearer token：devtoken <userId>
package main

import (
	"fmt"
	"os"

	"github.com/d60-Lab/im-delivery/config"
	"github.com/d60-Lab/im-delivery/internal/auth"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: devtoken <userId>")
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	tok, err := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.Expire).Issue(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
