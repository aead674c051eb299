//	@title			SSOGate API
//	@version		1.0
//	@description	Self-hosted OpenID Connect identity provider with Authorization Code Flow and PKCE

//	@license.name	MIT
//	@license.url	https://github.com/mitradev/ssogate/blob/main/LICENSE

//	@host		localhost:8080
//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the access token.

//	@securityDefinitions.apikey	SessionAuth
//	@in							cookie
//	@name						ssogate_session
//	@description				Session cookie for authenticated users

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mitradev/ssogate/internal/bootstrap"
	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/version"

	_ "github.com/mitradev/ssogate/api" // swagger docs
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "server":
		runServer()
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Usage: %s [OPTIONS] COMMAND\n\n", os.Args[0])
	fmt.Println("Self-hosted OpenID Connect identity provider")
	fmt.Println("\nCommands:")
	fmt.Println("  server    Start the identity provider")
	fmt.Println("\nOptions:")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println("  -h, --help       Show this help message")
}

func runServer() {
	cfg := config.Load()

	if err := bootstrap.Run(context.Background(), cfg); err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
}
