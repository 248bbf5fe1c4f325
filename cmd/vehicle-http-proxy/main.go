package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/remote-vehicle/vehicle-gateway/internal/log"
	"github.com/remote-vehicle/vehicle-gateway/pkg/cli"
	"github.com/remote-vehicle/vehicle-gateway/pkg/proxy"
)

const (
	defaultHost   = "localhost"
	defaultPort   = 5001
	logMaxAgeDays = 28
)

const (
	EnvTlsCert = "VEHICLE_TLS_CERT"
	EnvTlsKey  = "VEHICLE_TLS_KEY"
	EnvHost    = "VEHICLE_HTTP_HOST"
	EnvPort    = "PORT"
	EnvTimeout = "VEHICLE_HTTP_TIMEOUT"
	EnvVerbose = "VEHICLE_VERBOSE"
	EnvLogFile = "VEHICLE_LOG_FILE"
)

const nonLocalhostWarning = `
Do not listen on a network interface without adding client authentication. Every client that can
reach this server can unlock and start the vehicles on the configured account.`

type HttpProxyConfig struct {
	keyFilename  string
	certFilename string
	selfSigned   bool
	verbose      bool
	logFile      string
	host         string
	port         int
	timeout      time.Duration
}

var (
	httpConfig = &HttpProxyConfig{}
)

func init() {
	flag.StringVar(&httpConfig.certFilename, "cert", "", "TLS certificate chain `file` with concatenated server, intermediate CA, and root CA certificates")
	flag.StringVar(&httpConfig.keyFilename, "tls-key", "", "Server TLS private key `file`")
	flag.BoolVar(&httpConfig.selfSigned, "self-signed", false, "Serve TLS using a temporary self-signed certificate for localhost")
	flag.BoolVar(&httpConfig.verbose, "verbose", false, "Enable verbose logging")
	flag.StringVar(&httpConfig.logFile, "log-file", "", "Also write logs to `file`, rotating it as it grows")
	flag.StringVar(&httpConfig.host, "host", defaultHost, "Proxy server `hostname`")
	flag.IntVar(&httpConfig.port, "port", defaultPort, "`Port` to listen on")
	flag.DurationVar(&httpConfig.timeout, "timeout", proxy.DefaultTimeout, "Timeout interval when sending commands")
}

func Usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [OPTION...]\n", os.Args[0])
	fmt.Fprintf(out, "\nA server that exposes a REST API for sending commands to vehicles")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, nonLocalhostWarning)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Options:")
	flag.PrintDefaults()
}

func main() {
	config, err := cli.NewConfig(cli.FlagAll)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load credential configuration: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	}()

	flag.Usage = Usage
	config.RegisterCommandLineFlags()
	flag.Parse()
	if err = config.LoadDotEnv(); err != nil {
		return
	}
	if err = readFromEnvironment(); err != nil {
		return
	}
	config.ReadFromEnvironment()

	log.SetLevel(log.LevelInfo)
	if httpConfig.verbose {
		log.SetLevel(log.LevelDebug)
	}
	if httpConfig.logFile != "" {
		if err = log.SetFile(httpConfig.logFile, logMaxAgeDays); err != nil {
			return
		}
	}

	if httpConfig.host != defaultHost {
		fmt.Fprintln(os.Stderr, nonLocalhostWarning)
	}

	acct, err := config.Account()
	if err != nil {
		return
	}

	log.Debug("Creating proxy")
	dispatcher := proxy.NewDispatcher(acct, config.Dialer())
	dispatcher.Timeout = httpConfig.timeout
	p := proxy.New(dispatcher, nil)

	addr := net.JoinHostPort(httpConfig.host, strconv.Itoa(httpConfig.port))
	server := newServer(addr, p)
	if httpConfig.selfSigned {
		if _, err = useSelfSignedCertificate(server); err != nil {
			return
		}
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Listening on %s (default region %s)", addr, acct.DefaultRegion())
	err = serve(ctx, server, listener, httpConfig.certFilename, httpConfig.keyFilename)
	log.Info("Server stopped")
}

// readFromEnvironment applies configuration from environment variables.
// Values are not overwritten.
func readFromEnvironment() error {
	if httpConfig.certFilename == "" {
		httpConfig.certFilename = os.Getenv(EnvTlsCert)
	}

	if httpConfig.keyFilename == "" {
		httpConfig.keyFilename = os.Getenv(EnvTlsKey)
	}

	if httpConfig.logFile == "" {
		httpConfig.logFile = os.Getenv(EnvLogFile)
	}

	if httpConfig.host == defaultHost {
		host, ok := os.LookupEnv(EnvHost)
		if ok && host != "" {
			httpConfig.host = host
		}
	}

	if !httpConfig.verbose {
		if verbose, ok := os.LookupEnv(EnvVerbose); ok {
			httpConfig.verbose = verbose != "" && verbose != "false" && verbose != "0"
		}
	}

	var err error
	if httpConfig.port == defaultPort {
		if port, ok := os.LookupEnv(EnvPort); ok && port != "" {
			httpConfig.port, err = strconv.Atoi(port)
			if err != nil {
				return fmt.Errorf("invalid port: %s", port)
			}
		}
	}

	if httpConfig.timeout == proxy.DefaultTimeout {
		if timeoutEnv, ok := os.LookupEnv(EnvTimeout); ok && timeoutEnv != "" {
			httpConfig.timeout, err = time.ParseDuration(timeoutEnv)
			if err != nil {
				return fmt.Errorf("invalid timeout: %s", timeoutEnv)
			}
		}
	}

	if (httpConfig.certFilename == "") != (httpConfig.keyFilename == "") {
		return fmt.Errorf("TLS requires both a certificate and a key")
	}
	if httpConfig.selfSigned && httpConfig.certFilename != "" {
		return fmt.Errorf("-self-signed cannot be combined with -cert")
	}

	return nil
}
