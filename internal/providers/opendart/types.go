package opendart

import (
	"encoding/xml"

	"github.com/kfinlab/finharvest/internal/provider"
)

// dartStatus is the common status envelope on every OpenDART JSON response.
type dartStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// corpCodeList is the XML document inside the corpCode.xml ZIP download.
type corpCodeList struct {
	XMLName xml.Name       `xml:"result"`
	Items   []corpCodeItem `xml:"list"`
}

type corpCodeItem struct {
	CorpCode   string `xml:"corp_code"`
	CorpName   string `xml:"corp_name"`
	StockCode  string `xml:"stock_code"`
	ModifyDate string `xml:"modify_date"` // YYYYMMDD, last disclosure activity
}

// fnlttResponse is the fnlttSinglAcntAll.json response.
// List is empty when status is not "000".
type fnlttResponse struct {
	dartStatus
	List []provider.AccountItem `json:"list"`
}
