package restyutil

import (
	"net/http/cookiejar"
	"os"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// HttpDumpEnvVar names a directory to dump raw request/response pairs
// into. Dumps are off unless it is set and debug logging is on.
const HttpDumpEnvVar = "CITY_SCRAPERS_HTTP_DUMP"

// NewScraperClient builds the resty client every scraper uses: cookie
// jar, browser user agent, a request timeout, the cloudflare bypass
// transport and tracing hooks. Some of the agency sites (degc.org in
// particular) sit behind cloudflare and reject the default Go client
// outright.
func NewScraperClient() *resty.Client {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		panic(err)
	}
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(time.Second * 30)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	var output InstrumentOutput
	if dir := os.Getenv(HttpDumpEnvVar); dir != "" {
		output = NewFilesystemOutput(dir)
	}
	InstrumentClient(client, otel.Tracer("cityscrapers.lib.restyutil"), output)
	return client
}
