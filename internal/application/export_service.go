package application

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

type ExportServiceImpl struct {
	links  LinkService
	logger Logger
}

func NewExportServiceImpl(links LinkService, logger Logger) *ExportServiceImpl {
	return &ExportServiceImpl{links: links, logger: logger}
}

// ExportLinks renders every link as an xlsx workbook.
func (s *ExportServiceImpl) ExportLinks(ctx context.Context) ([]byte, error) {
	links, err := s.links.ListLinks(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{exportHeaderColor}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	f.SetCellValue(exportSheetName, "A1", "Discord ID")
	f.SetCellValue(exportSheetName, "B1", "Minecraft ID")
	f.SetCellStyle(exportSheetName, "A1", "B1", headerStyle)
	f.SetColWidth(exportSheetName, "A", "A", exportDiscordWidth)
	f.SetColWidth(exportSheetName, "B", "B", exportMinecraftWidth)

	for i, l := range links {
		row := i + 2
		// ids stay text so spreadsheets don't round snowflakes
		f.SetCellStr(exportSheetName, fmt.Sprintf("A%d", row), l.DiscordID)
		f.SetCellStr(exportSheetName, fmt.Sprintf("B%d", row), l.MinecraftID)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Exported %d links", len(links))
	return buf.Bytes(), nil
}
