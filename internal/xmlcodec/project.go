package xmlcodec

import (
	"encoding/json"
	"encoding/xml"
	"strings"

	"github.com/sealmit/asig/pkg/types"
)

// configOutDoc is the write-path shape of project.xml. Levels are always
// written as (Name, Description) pairs and the Settings block is always
// present; both are current-generation forms.
type configOutDoc struct {
	XMLName    xml.Name       `xml:"ProjectConfig"`
	Name       string         `xml:"Name"`
	Levels     []levelOutDoc  `xml:"Levels>Level"`
	RiskMatrix string         `xml:"RiskMatrix,omitempty"`
	Settings   settingsOutDoc `xml:"Settings"`
}

type levelOutDoc struct {
	Name        string `xml:"Name"`
	Description string `xml:"Description,omitempty"`
}

type settingsOutDoc struct {
	EnforceSingleParent         string `xml:"EnforceSingleParent"`
	PreventOrphansAtLowerLevels string `xml:"PreventOrphansAtLowerLevels"`
}

// configInDoc is the read-path shape. levelInDoc captures both the legacy
// bare-string form and the current pair form; settingsInDoc uses pointers
// so a missing block or element defaults to disabled.
type configInDoc struct {
	XMLName    xml.Name       `xml:"ProjectConfig"`
	Name       string         `xml:"Name"`
	Levels     []levelInDoc   `xml:"Levels>Level"`
	RiskMatrix string         `xml:"RiskMatrix"`
	Settings   *settingsInDoc `xml:"Settings"`
}

type levelInDoc struct {
	// Raw holds the element text of a legacy bare-string level. In the
	// current form it collects only whitespace between child elements.
	Raw         string `xml:",chardata"`
	Name        string `xml:"Name"`
	Description string `xml:"Description"`
}

type settingsInDoc struct {
	EnforceSingleParent         *string `xml:"EnforceSingleParent"`
	PreventOrphansAtLowerLevels *string `xml:"PreventOrphansAtLowerLevels"`
}

// EncodeConfig renders project.xml in the current schema generation.
func EncodeConfig(config types.ProjectConfig) ([]byte, error) {
	doc := configOutDoc{
		Name: config.Name,
		Settings: settingsOutDoc{
			EnforceSingleParent:         formatBool(config.Settings.EnforceSingleParent),
			PreventOrphansAtLowerLevels: formatBool(config.Settings.PreventOrphansAtLowerLevels),
		},
	}
	for _, level := range config.Levels {
		doc.Levels = append(doc.Levels, levelOutDoc{Name: level.Name, Description: level.Description})
	}
	if len(config.RiskMatrix) > 0 {
		blob, err := json.Marshal(config.RiskMatrix)
		if err != nil {
			return nil, err
		}
		doc.RiskMatrix = string(blob)
	}
	return marshal(doc)
}

// DecodeConfig parses project.xml of either schema generation. Levels are
// detected structurally: a Level element with a Name child is the current
// form, otherwise its text content is taken as a legacy bare-string level.
// A missing Settings block yields both policy switches disabled.
func DecodeConfig(data []byte) (types.ProjectConfig, error) {
	var doc configInDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return types.ProjectConfig{}, corrupt("%v", err)
	}
	if doc.Name == "" {
		return types.ProjectConfig{}, corrupt("project config missing name")
	}

	config := types.ProjectConfig{Name: doc.Name}
	for _, level := range doc.Levels {
		if level.Name != "" {
			config.Levels = append(config.Levels, types.RequirementLevel{
				Name:        level.Name,
				Description: level.Description,
			})
			continue
		}
		name := strings.TrimSpace(level.Raw)
		if name == "" {
			return types.ProjectConfig{}, corrupt("project %s has a level with no name", doc.Name)
		}
		config.Levels = append(config.Levels, types.RequirementLevel{Name: name})
	}

	if doc.RiskMatrix != "" {
		if err := json.Unmarshal([]byte(doc.RiskMatrix), &config.RiskMatrix); err != nil {
			return types.ProjectConfig{}, corrupt("project %s risk matrix: %v", doc.Name, err)
		}
	}

	if doc.Settings != nil {
		var err error
		if config.Settings.EnforceSingleParent, err = settingFlag(doc.Settings.EnforceSingleParent); err != nil {
			return types.ProjectConfig{}, corrupt("project %s settings: %v", doc.Name, err)
		}
		if config.Settings.PreventOrphansAtLowerLevels, err = settingFlag(doc.Settings.PreventOrphansAtLowerLevels); err != nil {
			return types.ProjectConfig{}, corrupt("project %s settings: %v", doc.Name, err)
		}
	}
	return config, nil
}

// settingFlag parses an optional boolean element, defaulting to false
// when absent.
func settingFlag(s *string) (bool, error) {
	if s == nil {
		return false, nil
	}
	return parseBool(*s)
}
