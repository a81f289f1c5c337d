package middleware

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GeoLocation represents the geolocation information for an IP. The
// registration wizard uses it to prefill the country and phone dialing code.
type GeoLocation struct {
	IP                 string `json:"ip"`
	City               string `json:"city"`
	Country            string `json:"country_name"`
	CountryCode        string `json:"country_code"`
	CountryCallingCode string `json:"country_calling_code"`
}

// geoCache caches geolocation results keyed by IP address.
var geoCache = make(map[string]*GeoLocation)
var cacheMutex sync.RWMutex

// isPrivateIP checks if an IP is private or loopback.
func isPrivateIP(ip string) bool {
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}
	if parsedIP.IsLoopback() {
		return true
	}
	privateIPBlocks := []*net.IPNet{
		{IP: net.IPv4(10, 0, 0, 0), Mask: net.CIDRMask(8, 32)},
		{IP: net.IPv4(172, 16, 0, 0), Mask: net.CIDRMask(12, 32)},
		{IP: net.IPv4(192, 168, 0, 0), Mask: net.CIDRMask(16, 32)},
	}
	for _, block := range privateIPBlocks {
		if block.Contains(parsedIP) {
			return true
		}
	}
	return false
}

func defaultGeo(ip string) *GeoLocation {
	return &GeoLocation{IP: ip, Country: "Unknown"}
}

// getGeolocation retrieves geolocation data from ipapi.co and caches the
// result. Private IPs and API failures yield a default "Unknown" location so
// the wizard simply skips prefill.
func getGeolocation(ip string, logger *zap.Logger) *GeoLocation {
	cacheMutex.RLock()
	if geo, exists := geoCache[ip]; exists {
		cacheMutex.RUnlock()
		return geo
	}
	cacheMutex.RUnlock()

	if isPrivateIP(ip) {
		geo := defaultGeo(ip)
		cacheMutex.Lock()
		geoCache[ip] = geo
		cacheMutex.Unlock()
		return geo
	}

	url := fmt.Sprintf("https://ipapi.co/%s/json/", ip)
	client := http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		logger.Error("Failed to query geolocation API", zap.String("ip", ip), zap.Error(err))
		return defaultGeo(ip)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("Geolocation API returned non-OK status", zap.String("ip", ip), zap.Int("status", resp.StatusCode))
		return defaultGeo(ip)
	}

	var geo GeoLocation
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		logger.Error("Failed to decode geolocation response", zap.String("ip", ip), zap.Error(err))
		return defaultGeo(ip)
	}
	if geo.Country == "" {
		geo.Country = "Unknown"
	}

	cacheMutex.Lock()
	geoCache[ip] = &geo
	cacheMutex.Unlock()
	return &geo
}

// GeolocationMiddleware resolves the client's IP to a country and phone
// dialing code and sets the result in the context for the registration
// handlers to prefill with.
func GeolocationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := zap.L()

		clientIP := getClientIP(c)
		if clientIP == "" {
			c.Set("geoLocation", defaultGeo(clientIP))
			c.Next()
			return
		}

		geo := getGeolocation(clientIP, logger)
		c.Set("geoLocation", geo)
		c.Next()
	}
}
