package grids

import (
	"fmt"
	"regexp"
)

// wktAuthorityRegex matches the authority node that closes a WKT string,
// i.e. the authority of the root element. Inner nodes (datums, units)
// carry their own AUTHORITY entries; only the trailing one describes the
// CRS itself.
var wktAuthorityRegex = regexp.MustCompile(`AUTHORITY\["([^"]+)","([^"]+)"\]\]*$`)

// CRS is an opaque coordinate reference system backed by its WKT
// representation. Two CRS are equal when their WKT strings are equal.
type CRS struct {
	wkt           string
	authorityName string
	authorityCode string
}

// NewCRS builds a CRS from a WKT string. The authority is extracted on a
// best-effort basis; a WKT without a root authority node is still valid.
func NewCRS(wkt string) (CRS, error) {
	if wkt == "" {
		return CRS{}, fmt.Errorf("%w: empty crs", ErrInvalidGrid)
	}
	crs := CRS{wkt: wkt}
	if parts := wktAuthorityRegex.FindStringSubmatch(wkt); parts != nil {
		crs.authorityName = parts[1]
		crs.authorityCode = parts[2]
	}
	return crs, nil
}

// MustNewCRS is NewCRS for statically known WKT strings.
func MustNewCRS(wkt string) CRS {
	crs, err := NewCRS(wkt)
	if err != nil {
		panic(err)
	}
	return crs
}

func (crs CRS) WKT() string {
	return crs.wkt
}

func (crs CRS) String() string {
	return crs.wkt
}

func (crs CRS) AuthorityName() string {
	return crs.authorityName
}

func (crs CRS) AuthorityCode() string {
	return crs.authorityCode
}

// SRID returns the numeric authority code, if the WKT carried one.
func (crs CRS) SRID() (uint, bool) {
	if crs.authorityCode == "" {
		return 0, false
	}
	var srid uint
	if _, err := fmt.Sscanf(crs.authorityCode, "%d", &srid); err != nil {
		return 0, false
	}
	return srid, true
}

func (crs CRS) Equal(other CRS) bool {
	return crs.wkt == other.wkt
}

// IsZero reports whether the CRS is unset.
func (crs CRS) IsZero() bool {
	return crs.wkt == ""
}
