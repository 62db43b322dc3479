package elevenst

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/dietcoach/backend/internal/domain"
	"golang.org/x/net/html/charset"
)

const (
	mallName         = "11st"
	detailURLPattern = "https://www.11st.co.kr/products/%s"
)

type searchResponse struct {
	Products []product `xml:"Products>Product"`
}

// product mirrors one <Product> record. Category fields vary between API versions.
type product struct {
	ProductCode     string `xml:"ProductCode"`
	ProductName     string `xml:"ProductName"`
	SalePrice       string `xml:"SalePrice"`
	ProductPrice    string `xml:"ProductPrice"`
	ProductImage    string `xml:"ProductImage"`
	ProductImage300 string `xml:"ProductImage300"`
	DetailPageURL   string `xml:"DetailPageUrl"`
	SellerNick      string `xml:"SellerNick"`
	CategoryCode    string `xml:"CategoryCode"`
	DispatchDispNo  string `xml:"DispatchDispNo"`
	DispNo          string `xml:"DispNo"`
	CategoryName    string `xml:"CategoryName"`
	DispatchDispNm  string `xml:"DispatchDispNm"`
	DispNm          string `xml:"DispNm"`
}

// ParseSearchResponse decodes a ProductSearch document in any charset the
// document declares (11st serves EUC-KR). A blank body yields no products.
func ParseSearchResponse(body []byte) ([]domain.CandidateProduct, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return []domain.CandidateProduct{}, nil
	}

	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.CharsetReader = charset.NewReaderLabel

	var resp searchResponse
	if err := decoder.Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: malformed xml: %v", domain.ErrMarketplaceFailure, err)
	}

	products := make([]domain.CandidateProduct, 0, len(resp.Products))
	for _, p := range resp.Products {
		products = append(products, mapToCandidate(p))
	}
	return products, nil
}

// mapToCandidate converts one 11st record to a candidate product
func mapToCandidate(p product) domain.CandidateProduct {
	code := strings.TrimSpace(p.ProductCode)

	detailURL := strings.TrimSpace(p.DetailPageURL)
	if detailURL == "" && code != "" {
		detailURL = fmt.Sprintf(detailURLPattern, code)
	}

	price := parsePrice(p.SalePrice)
	if strings.TrimSpace(p.SalePrice) == "" {
		price = parsePrice(p.ProductPrice)
	}

	return domain.CandidateProduct{
		ExternalID:   code,
		Title:        strings.TrimSpace(p.ProductName),
		Price:        price,
		CategoryCode: firstNonEmpty(p.CategoryCode, p.DispatchDispNo, p.DispNo),
		CategoryName: firstNonEmpty(p.CategoryName, p.DispatchDispNm, p.DispNm),
		MallName:     firstNonEmpty(p.SellerNick, mallName),
		ProductURL:   detailURL,
		ImageURL:     firstNonEmpty(p.ProductImage, p.ProductImage300),
	}
}

// parsePrice reads "12,900" or "12900원". Anything unparseable or negative is 0.
func parsePrice(s string) int {
	cleaned := strings.NewReplacer(",", "", " ", "", "원", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0
	}
	v, err := strconv.Atoi(cleaned)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}
