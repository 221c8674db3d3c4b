/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package devices

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/carverauto/netcoord/pkg/logger"
	"github.com/carverauto/netcoord/pkg/models"
)

// DefaultOUIPaths are the usual locations of the IEEE vendor prefix list.
var DefaultOUIPaths = []string{
	"/usr/share/hwdata/oui.txt",
	"/usr/share/misc/oui.txt",
	"/usr/share/ieee-data/oui.txt",
	"/var/lib/ieee-data/oui.txt",
}

var (
	phoneHostnames    = []string{"phone", "android", "iphone", "ipad", "pixel", "galaxy", "mobile", "tablet"}
	computerHostnames = []string{"laptop", "desktop", "pc", "macbook", "thinkpad", "surface"}

	phoneVendors = []string{
		"apple", "samsung", "huawei", "xiaomi", "oneplus", "oppo",
		"vivo", "google", "motorola", "nokia", "sony", "htc",
	}
	computerVendors = []string{
		"dell", "lenovo", "asus", "acer", "hewlett", "hp", "intel",
		"microsoft", "msi", "gigabyte", "framework", "system76",
	}
)

// Classifier guesses a device class from its hostname and hardware vendor.
// The zero value classifies by hostname and address bits only.
type Classifier struct {
	vendors map[string]string
}

// NewClassifier returns a classifier using the given OUI table, keyed by
// six upper-case hex digits.
func NewClassifier(vendors map[string]string) *Classifier {
	return &Classifier{vendors: vendors}
}

// LoadClassifier reads the first OUI file from paths that yields entries.
// A host without any vendor list still gets a working classifier.
func LoadClassifier(paths []string, log logger.Logger) *Classifier {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}

		vendors := ParseOUI(f)
		_ = f.Close()

		if len(vendors) > 0 {
			log.Debug().Str("path", path).Int("prefixes", len(vendors)).Msg("Loaded vendor prefixes")

			return NewClassifier(vendors)
		}
	}

	log.Info().Msg("No vendor prefix list found, classifying by hostname only")

	return NewClassifier(nil)
}

// ParseOUI reads the IEEE oui.txt format, accepting both the "(hex)" and
// "(base 16)" line forms.
func ParseOUI(r io.Reader) map[string]string {
	vendors := make(map[string]string)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		prefix, vendor, ok := strings.Cut(line, "(hex)")
		if !ok {
			prefix, vendor, ok = strings.Cut(line, "(base 16)")
		}

		if !ok {
			continue
		}

		oui, ok := ouiOf(prefix)
		vendor = strings.TrimSpace(vendor)

		if ok && vendor != "" {
			vendors[oui] = vendor
		}
	}

	return vendors
}

// Vendor returns the registered vendor of mac, if known.
func (c *Classifier) Vendor(mac string) string {
	if c == nil || c.vendors == nil {
		return ""
	}

	oui, ok := ouiOf(mac)
	if !ok {
		return ""
	}

	return c.vendors[oui]
}

// Classify returns the device class and vendor. It never fails; anything
// unrecognized is DeviceUnknown.
func (c *Classifier) Classify(mac, hostname string) (models.DeviceClass, string) {
	vendor := c.Vendor(mac)

	if class, ok := classByKeywords(hostname, phoneHostnames, computerHostnames); ok {
		return class, vendor
	}

	if class, ok := classByKeywords(vendor, phoneVendors, computerVendors); ok {
		return class, vendor
	}

	// Randomized private addresses are almost always phones.
	if locallyAdministered(mac) {
		return models.DevicePhone, vendor
	}

	return models.DeviceUnknown, vendor
}

func classByKeywords(s string, phone, computer []string) (models.DeviceClass, bool) {
	if s == "" {
		return models.DeviceUnknown, false
	}

	lower := strings.ToLower(s)

	for _, kw := range phone {
		if strings.Contains(lower, kw) {
			return models.DevicePhone, true
		}
	}

	for _, kw := range computer {
		if strings.Contains(lower, kw) {
			return models.DeviceComputer, true
		}
	}

	return models.DeviceUnknown, false
}

func ouiOf(s string) (string, bool) {
	var b strings.Builder

	for _, r := range s {
		if isHex(r) {
			b.WriteRune(r)

			if b.Len() == 6 {
				return strings.ToUpper(b.String()), true
			}
		}
	}

	return "", false
}

func locallyAdministered(mac string) bool {
	oui, ok := ouiOf(mac)
	if !ok {
		return false
	}

	return hexValue(oui[1])&0x2 != 0
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}
