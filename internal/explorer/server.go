package explorer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/quic-go/quic-go/http3"
)

// Server serves a handler over HTTP/3.
type Server struct {
	srv   *http3.Server
	pc    net.PacketConn
	addr  string
	close func() error
}

// NewServer creates a server bound to addr with the given TLS config.
func NewServer(addr string, tlsCfg *tls.Config, h http.Handler) *Server {
	s := &http3.Server{Addr: addr, TLSConfig: http3.ConfigureTLSConfig(tlsCfg), Handler: h}
	return &Server{srv: s, addr: addr}
}

// Start begins serving and returns the bound UDP address, which differs from
// the configured one when it ends with ":0".
func (s *Server) Start() (string, error) {
	var err error
	s.pc, err = net.ListenPacket("udp", s.addr)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", s.addr, err)
	}
	realAddr := s.pc.LocalAddr().String()
	done := make(chan struct{})
	go func() {
		_ = s.srv.Serve(s.pc)
		close(done)
	}()
	s.close = func() error {
		_ = s.srv.Close()
		err := s.pc.Close()
		select {
		case <-done:
		case <-time.After(time.Second):
		}
		return err
	}
	return realAddr, nil
}

// Stop stops the server.
func (s *Server) Stop() error {
	if s.close != nil {
		return s.close()
	}
	return nil
}

// Client returns an http.Client speaking HTTP/3.
func Client(tlsCfg *tls.Config, timeout time.Duration) *http.Client {
	tr := &http3.RoundTripper{TLSClientConfig: tlsCfg}
	return &http.Client{Transport: tr, Timeout: timeout}
}

// CloseClient closes the QUIC connections held by a client from Client.
func CloseClient(c *http.Client) {
	if tr, ok := c.Transport.(*http3.RoundTripper); ok {
		_ = tr.Close()
	}
}

// LoadTLSConfig reads a certificate and key pair, or generates a self-signed
// certificate for localhost when both paths are empty.
func LoadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" && keyFile == "" {
		return SelfSigned([]string{"localhost"}, 24*time.Hour)
	}
	pair, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load key pair: %w", err)
	}
	return &tls.Config{Certificates: []tls.Certificate{pair}, MinVersion: tls.VersionTLS13}, nil
}

// SelfSigned generates a throwaway ECDSA certificate valid for hosts.
func SelfSigned(hosts []string, validFor time.Duration) (*tls.Config, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{Organization: []string{"rangeopt explorer"}},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(validFor),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
		} else {
			tmpl.DNSNames = append(tmpl.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	cert := tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv}
	return &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS13}, nil
}
