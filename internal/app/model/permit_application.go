package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

type ApplicationType string // başvuru türü kodu
type ApplicationStatus string // başvuru durumu kodu
type BuildingType string // yapı türü kodu

const (
	TypeYapiRuhsati    ApplicationType = "YAPI_RUHSATI"    // yapı ruhsatı
	TypeIskanRuhsati   ApplicationType = "ISKAN_RUHSATI"   // iskan ruhsatı
	TypeImarDurumu     ApplicationType = "IMAR_DURUMU"     // imar durumu belgesi
	TypeTadilatRuhsati ApplicationType = "TADILAT_RUHSATI" // tadilat ruhsatı

	StatusBeklemede   ApplicationStatus = "BEKLEMEDE"   // başvuru alındı
	StatusInceleniyor ApplicationStatus = "INCELENIYOR" // incelemede
	StatusOnaylandi   ApplicationStatus = "ONAYLANDI"   // onaylandı, ruhsat düzenlendi
	StatusReddedildi  ApplicationStatus = "REDDEDILDI"  // reddedildi
	StatusTamamlandi  ApplicationStatus = "TAMAMLANDI"  // süreç kapandı

	BuildingKonut       BuildingType = "KONUT"       // konut
	BuildingTicari      BuildingType = "TICARI"      // ticari
	BuildingEndustriyel BuildingType = "ENDUSTRIYEL" // endüstriyel
	BuildingKamu        BuildingType = "KAMU"        // kamu binası
)

// AllApplicationTypes lists every type, in display order.
var AllApplicationTypes = []ApplicationType{
	TypeYapiRuhsati,
	TypeIskanRuhsati,
	TypeImarDurumu,
	TypeTadilatRuhsati,
}

// AllApplicationStatuses lists every status, in lifecycle order.
var AllApplicationStatuses = []ApplicationStatus{
	StatusBeklemede,
	StatusInceleniyor,
	StatusOnaylandi,
	StatusReddedildi,
	StatusTamamlandi,
}

func (t ApplicationType) Valid() bool {
	switch t {
	case TypeYapiRuhsati, TypeIskanRuhsati, TypeImarDurumu, TypeTadilatRuhsati:
		return true
	}
	return false
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusBeklemede, StatusInceleniyor, StatusOnaylandi, StatusReddedildi, StatusTamamlandi:
		return true
	}
	return false
}

func (b BuildingType) Valid() bool {
	switch b {
	case BuildingKonut, BuildingTicari, BuildingEndustriyel, BuildingKamu:
		return true
	}
	return false
}

// DateOnly is a calendar date without a time component. The frontend exchanges
// dates as "yyyy-MM-dd", so the default RFC3339 encoding of time.Time does not
// fit the wire contract.
type DateOnly struct {
	time.Time
}

const dateOnlyLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) DateOnly {
	return DateOnly{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date.
func Today() DateOnly {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses a "yyyy-MM-dd" string.
func ParseDate(s string) (DateOnly, error) {
	t, err := time.Parse(dateOnlyLayout, s)
	if err != nil {
		return DateOnly{}, err
	}
	return DateOnly{Time: t}, nil
}

// AddDays returns the date shifted by the given number of days.
func (d DateOnly) AddDays(days int) DateOnly {
	return DateOnly{Time: d.Time.AddDate(0, 0, days)}
}

// AddYears returns the date shifted by the given number of years.
func (d DateOnly) AddYears(years int) DateOnly {
	return DateOnly{Time: d.Time.AddDate(years, 0, 0)}
}

func (d DateOnly) String() string {
	return d.Time.Format(dateOnlyLayout)
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Time.Format(dateOnlyLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(`"`+dateOnlyLayout+`"`, s)
	if err != nil {
		return fmt.Errorf("invalid date %s: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d DateOnly) Value() (driver.Value, error) {
	if d.Time.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

func (d *DateOnly) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		d.Time = time.Time{}
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
	case string:
		t, err := time.Parse(dateOnlyLayout, v[:min(len(v), len(dateOnlyLayout))])
		if err != nil {
			return err
		}
		d.Time = t
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into DateOnly", value)
	}
	return nil
}

// GormDataType tells gorm to create a plain date column.
func (DateOnly) GormDataType() string {
	return "date"
}

// PermitApplication is a citizen's building-permit application, tracked from
// intake through review to permit issuance. Column names match the municipal
// schema; JSON keys follow the camelCase contract the frontend expects.
type PermitApplication struct {
	ID uint `gorm:"primarykey" json:"id"`

	BasvuruNo      string            `gorm:"column:basvuru_no;type:varchar(20);uniqueIndex;not null" json:"basvuruNo"` // başvuru numarası (IRyyyyMMddSSSS)
	BasvuruTarihi  DateOnly          `gorm:"column:basvuru_tarihi;not null" json:"basvuruTarihi"`
	BasvuruTuru    ApplicationType   `gorm:"column:basvuru_turu;type:varchar(30);not null" json:"basvuruTuru"`
	BasvuruDurumu  ApplicationStatus `gorm:"column:basvuru_durumu;type:varchar(20);not null;index" json:"basvuruDurumu"`

	BasvuruSahibiAdi     string `gorm:"column:basvuru_sahibi_adi;not null" json:"basvuruSahibiAdi"`
	BasvuruSahibiSoyadi  string `gorm:"column:basvuru_sahibi_soyadi;not null" json:"basvuruSahibiSoyadi"`
	BasvuruSahibiTcno    string `gorm:"column:basvuru_sahibi_tcno;type:varchar(11);not null;index" json:"basvuruSahibiTcno"`
	BasvuruSahibiTelefon string `gorm:"column:basvuru_sahibi_telefon" json:"basvuruSahibiTelefon"`
	BasvuruSahibiEmail   string `gorm:"column:basvuru_sahibi_email" json:"basvuruSahibiEmail"`

	ArsaAdresi   string   `gorm:"column:arsa_adresi;not null" json:"arsaAdresi"`
	ArsaParselNo string   `gorm:"column:arsa_parsel_no" json:"arsaParselNo"`
	ArsaAdaNo    string   `gorm:"column:arsa_ada_no" json:"arsaAdaNo"`
	ArsaPaftaNo  string   `gorm:"column:arsa_pafta_no" json:"arsaPaftaNo"`
	ArsaAlani    *float64 `gorm:"column:arsa_alani" json:"arsaAlani"` // m²

	YapiAlani         *float64     `gorm:"column:yapi_alani" json:"yapiAlani"` // m²
	KatSayisi         *int         `gorm:"column:kat_sayisi" json:"katSayisi"`
	DaireSayisi       *int         `gorm:"column:daire_sayisi" json:"daireSayisi"`
	YapiTuru          BuildingType `gorm:"column:yapi_turu;type:varchar(20)" json:"yapiTuru"`
	YapiKullanimAmaci string       `gorm:"column:yapi_kullanim_amaci" json:"yapiKullanimAmaci"`

	ProjeMimari    string    `gorm:"column:proje_mimari" json:"projeMimari"`
	ProjeMuhendisi string    `gorm:"column:proje_muhendisi" json:"projeMuhendisi"`
	ProjeTarihi    *DateOnly `gorm:"column:proje_tarihi" json:"projeTarihi"`

	RuhsatNo               string    `gorm:"column:ruhsat_no;type:varchar(20);index" json:"ruhsatNo"` // ruhsat numarası (RUyyyyMMSSSS), onayda atanır
	RuhsatTarihi           *DateOnly `gorm:"column:ruhsat_tarihi" json:"ruhsatTarihi"`
	RuhsatGecerlilikTarihi *DateOnly `gorm:"column:ruhsat_gecerlilik_tarihi" json:"ruhsatGecerlilikTarihi"` // ruhsat tarihi + 2 yıl

	OnayMakami string    `gorm:"column:onay_makami" json:"onayMakami"`
	OnayTarihi *DateOnly `gorm:"column:onay_tarihi" json:"onayTarihi"`
	RedSebebi  string    `gorm:"column:red_sebebi" json:"redSebebi"`
	Notlar     string    `gorm:"column:notlar;size:2000" json:"notlar"`
	DosyaYolu  string    `gorm:"column:dosya_yolu" json:"dosyaYolu"`

	Aktif                int        `gorm:"column:aktif;not null;default:1;index" json:"aktif"` // 1: aktif, 0: pasif (soft delete)
	OlusturmaTarihi      time.Time  `gorm:"column:olusturma_tarihi;not null;autoCreateTime" json:"olusturmaTarihi"`
	GuncellemeTarihi     *time.Time `gorm:"column:guncelleme_tarihi" json:"guncellemeTarihi"`
	OlusturanKullanici   string     `gorm:"column:olusturan_kullanici" json:"olusturanKullanici"`
	GuncelleyenKullanici string     `gorm:"column:guncelleyen_kullanici" json:"guncelleyenKullanici"`
}

func (PermitApplication) TableName() string {
	return "imar_ruhsatlar"
}
