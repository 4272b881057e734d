package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	"github.com/gradescan/gradescan/internal/shared/constants"
)

const categorySSL = "SSL/TLS"

// SSLChecker analyzes certificate validity, expiry, and supported protocol
// versions. Plaintext HTTP targets get a single no-https finding and no TLS
// sub-checks: a site without TLS cannot have TLS findings.
type SSLChecker struct {
	Timeout time.Duration

	// RootCAs overrides the system trust store, used by tests that probe
	// local TLS servers.
	RootCAs *x509.CertPool
}

func (s *SSLChecker) Name() string { return "ssl" }

// Check probes the target's TLS endpoint.
func (s *SSLChecker) Check(ctx context.Context, target *Target) []Finding {
	if !target.IsHTTPS() {
		return []Finding{
			failedFinding("no-https", "HTTPS not enabled", categorySSL, SeverityCritical,
				"Target is served over plaintext HTTP; all traffic can be intercepted or modified.").
				withDetails("TLS sub-checks skipped for non-HTTPS targets."),
		}
	}

	addr := target.HostPort()

	// Probe 1: verified handshake. Success means the chain validates
	// against the trust store for this hostname.
	cert, verifyErr := s.handshake(ctx, addr, &tls.Config{
		ServerName: target.Host,
		RootCAs:    s.RootCAs,
	})

	valid := verifyErr == nil
	if !valid {
		// Probe 2: insecure handshake so we can still report expiry and
		// issuer metadata for an untrusted certificate.
		insecureCert, insecureErr := s.handshake(ctx, addr, &tls.Config{
			ServerName:         target.Host,
			InsecureSkipVerify: true,
		})
		if insecureErr != nil {
			// Endpoint unreachable entirely; the stage degrades to one
			// error finding.
			perr := classifyProbeErr("handshake", insecureErr)
			return []Finding{stageErrorFinding(s.Name(), perr.Error())}
		}
		cert = insecureCert
	}

	selfSigned := cert != nil && cert.Subject.String() == cert.Issuer.String()
	days := 0
	if cert != nil {
		// Floor, not truncate: a cert expired by less than a day must land
		// at days < 0, never at 0.
		days = int(math.Floor(time.Until(cert.NotAfter).Hours() / 24))
	}

	// Probe 3: protocol version support.
	tls10 := s.supportsVersion(ctx, addr, target.Host, tls.VersionTLS10)
	tls12 := s.supportsVersion(ctx, addr, target.Host, tls.VersionTLS12)
	tls13 := s.supportsVersion(ctx, addr, target.Host, tls.VersionTLS13)

	findings := make([]Finding, 0, 8)

	if valid {
		findings = append(findings, passedFinding("ssl-valid", "Certificate valid", categorySSL,
			fmt.Sprintf("Certificate chain validates for %s.", target.Host)))
	} else {
		findings = append(findings, failedFinding("ssl-valid", "Certificate invalid", categorySSL, SeverityCritical,
			fmt.Sprintf("Certificate does not validate: %v", verifyErr)))
	}

	if selfSigned {
		findings = append(findings, failedFinding("ssl-self-signed", "Self-signed certificate", categorySSL, SeverityHigh,
			"Certificate is self-signed; browsers will not trust it."))
	}

	findings = append(findings, expiryFinding(days))

	if tls13 {
		findings = append(findings, passedFinding("tls-13", "TLS 1.3 supported", categorySSL,
			"Server negotiates TLS 1.3."))
	}
	if !tls12 && !tls13 {
		findings = append(findings, failedFinding("tls-outdated", "Modern TLS unsupported", categorySSL, SeverityCritical,
			"Server supports neither TLS 1.2 nor TLS 1.3."))
	}
	if tls10 {
		findings = append(findings, warningFinding("tls-10", "TLS 1.0 enabled", categorySSL, SeverityMedium,
			"Legacy TLS 1.0 is still accepted; disable it."))
	}

	if cert != nil {
		findings = append(findings, certStrengthFindings(cert)...)
	}

	findings = append(findings, sslGradeFinding(valid, selfSigned, days, tls10, tls12, tls13))
	return findings
}

// expiryFinding maps days-until-expiry onto the fixed thresholds: expired is
// critical, under a week high, under a month a medium warning.
func expiryFinding(days int) Finding {
	switch {
	case days < 0:
		return failedFinding("ssl-expiry", "Certificate expired", categorySSL, SeverityCritical,
			fmt.Sprintf("Certificate expired %d day(s) ago.", -days))
	case days < 7:
		return failedFinding("ssl-expiry", "Certificate expiring", categorySSL, SeverityHigh,
			fmt.Sprintf("Certificate expires in %d day(s).", days))
	case days < 30:
		return warningFinding("ssl-expiry", "Certificate expiring soon", categorySSL, SeverityMedium,
			fmt.Sprintf("Certificate expires in %d day(s); plan renewal.", days))
	default:
		return passedFinding("ssl-expiry", "Certificate expiry", categorySSL,
			fmt.Sprintf("Certificate valid for another %d day(s).", days))
	}
}

// certStrengthFindings flags weak signature algorithms and undersized RSA
// keys.
func certStrengthFindings(cert *x509.Certificate) []Finding {
	var findings []Finding

	sigAlg := strings.ToLower(cert.SignatureAlgorithm.String())
	if strings.Contains(sigAlg, "md5") || strings.Contains(sigAlg, "sha1") {
		findings = append(findings, failedFinding("ssl-weak-signature", "Weak signature algorithm", categorySSL, SeverityHigh,
			fmt.Sprintf("Certificate is signed with %s; use SHA-256 or stronger.", cert.SignatureAlgorithm)))
	}

	if strings.Contains(cert.PublicKeyAlgorithm.String(), "RSA") {
		if sized, ok := cert.PublicKey.(interface{ Size() int }); ok && sized.Size()*8 < 2048 {
			findings = append(findings, failedFinding("ssl-weak-key", "Weak RSA key", categorySSL, SeverityHigh,
				fmt.Sprintf("RSA key is %d bits; the minimum is 2048.", sized.Size()*8)))
		}
	}
	return findings
}

// sslGradeFinding computes the stage sub-grade. A+/A passes (and earns the
// scorer bonus), B is a warning, anything lower fails with escalating
// severity.
func sslGradeFinding(valid, selfSigned bool, days int, tls10, tls12, tls13 bool) Finding {
	score := 100
	if !valid {
		score -= 40
	}
	if selfSigned {
		score -= 20
	}
	switch {
	case days < 0:
		score -= 40
	case days < 7:
		score -= 20
	case days < 30:
		score -= 10
	}
	if !tls12 && !tls13 {
		score -= 50
	}
	if tls10 {
		score -= 10
	}
	if !tls13 {
		score -= 5
	}
	if score < 0 {
		score = 0
	}

	grade := GradeFor(score)
	message := fmt.Sprintf("TLS configuration grade: %s", grade)

	switch grade {
	case GradeAPlus, GradeA:
		return passedFinding("ssl-grade", "TLS grade", categorySSL, message)
	case GradeB:
		return warningFinding("ssl-grade", "TLS grade", categorySSL, SeverityLow, message)
	case GradeC:
		return failedFinding("ssl-grade", "TLS grade", categorySSL, SeverityMedium, message)
	case GradeD:
		return failedFinding("ssl-grade", "TLS grade", categorySSL, SeverityHigh, message)
	default:
		return failedFinding("ssl-grade", "TLS grade", categorySSL, SeverityCritical, message)
	}
}

// handshake performs one TLS handshake and returns the leaf certificate.
func (s *SSLChecker) handshake(ctx context.Context, addr string, cfg *tls.Config) (*x509.Certificate, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: s.timeout()},
		Config:    cfg,
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, &ProbeError{Kind: ProbeParse, Op: "handshake", Err: fmt.Errorf("no peer certificates presented")}
	}
	return state.PeerCertificates[0], nil
}

// supportsVersion probes whether the server accepts a handshake pinned to
// exactly one protocol version. Verification is skipped: this probe asks
// about protocol support, not trust.
func (s *SSLChecker) supportsVersion(ctx context.Context, addr, serverName string, version uint16) bool {
	_, err := s.handshake(ctx, addr, &tls.Config{
		ServerName:         serverName,
		MinVersion:         version,
		MaxVersion:         version,
		InsecureSkipVerify: true,
	})
	return err == nil
}

func (s *SSLChecker) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return constants.DefaultProbeTimeout
}
