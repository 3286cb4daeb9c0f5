package config

import (
	"encoding/xml"
	"fmt"
	"os"
)

var DSN string
var Listen string
var Debug bool
var ScratchRoot string
var ScratchTTLMin int
var GeoserverURL string
var GeoserverUser string
var GeoserverPass string
var GeoserverWorkspace string
var GeoserverStore string
var MainConfig Config

type Config struct {
	XMLName       xml.Name `xml:"config"`
	Listen        string   `xml:"listen"`
	Dbname        string   `xml:"dbname"`
	Host          string   `xml:"host"`
	Port          string   `xml:"port"`
	Username      string   `xml:"user"`
	Password      string   `xml:"password"`
	Debug         bool     `xml:"debug"`
	ScratchRoot   string   `xml:"ScratchRoot"`
	ScratchTTLMin int      `xml:"ScratchTTLMin"`
	Geoserver     struct {
		URL       string `xml:"url"`
		User      string `xml:"user"`
		Password  string `xml:"password"`
		Workspace string `xml:"workspace"`
		Store     string `xml:"store"`
	} `xml:"geoserver"`
}

func init() {
	xmlFile, err := os.Open("config.xml")
	if err != nil {
		fmt.Println("Error  opening  file:", err)
		return
	}
	defer xmlFile.Close()

	xmlDecoder := xml.NewDecoder(xmlFile)
	err = xmlDecoder.Decode(&MainConfig)
	if err != nil {
		fmt.Println("Error  decoding  XML:", err)
		return
	}
	Listen = MainConfig.Listen
	if Listen == "" {
		Listen = ":8000"
	}
	Debug = MainConfig.Debug
	ScratchRoot = MainConfig.ScratchRoot
	if ScratchRoot == "" {
		ScratchRoot = "ScratchStore"
	}
	ScratchTTLMin = MainConfig.ScratchTTLMin
	if ScratchTTLMin <= 0 {
		ScratchTTLMin = 60
	}
	GeoserverURL = MainConfig.Geoserver.URL
	GeoserverUser = MainConfig.Geoserver.User
	GeoserverPass = MainConfig.Geoserver.Password
	GeoserverWorkspace = MainConfig.Geoserver.Workspace
	GeoserverStore = MainConfig.Geoserver.Store

	DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC", MainConfig.Host, MainConfig.Username, MainConfig.Password, MainConfig.Dbname, MainConfig.Port)
}
