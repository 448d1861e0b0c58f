// Package main provides localization for the l2d CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":                "出力",
		"Filters":               "フィルタ",
		"Ground Classification": "地表分類",
		"External Tools":        "外部ツール",
		"Debug":                 "デバッグ",
		"Logging":               "ログ",

		// Root command
		"Create elevation models from LiDAR point clouds":                                                     "LiDAR点群から標高モデルを作成",
		"l2d classifies ground points and rasterizes LAS files into DSM, DTM and density products with pdal.": "l2dはpdalを使って地表点を分類し、LASファイルをDSM・DTM・密度ラスタに変換します。",

		// Commands
		"Merge LAS files and classify ground points":                     "LASファイルを結合し地表点を分類",
		"Create DEM products over one or more radii":                     "1つ以上の半径でDEMプロダクトを作成",
		"Print the pdal pipeline for one DEM product without running it": "DEMプロダクトのpdalパイプラインを実行せずに表示",
		"Show version information":                                       "バージョン情報を表示",
		"l2d version %s":                                                 "l2d バージョン %s",

		// Global flags
		"YAML configuration file": "YAML設定ファイル",
		"Path to pdal executable (falls back to PDAL_PATH env, then PATH)": "pdal実行ファイルのパス（未指定時はPDAL_PATH環境変数、次にPATH）",
		"Path to gdalwarp executable":                                      "gdalwarp実行ファイルのパス",
		"Judge success by output files only, not pdal's exit status":       "pdalの終了コードではなく出力ファイルの有無で成否を判定",
		"Abort the whole run after this duration (0 = no limit)":           "この時間を過ぎたら処理全体を中断（0 = 無制限）",
		"Print pipelines and pdal output":                                  "パイプラインとpdalの出力を表示",
		"Save every pipeline document":                                     "全てのパイプライン文書を保存",
		"Directory for debug output":                                       "デバッグ出力のディレクトリ",
		"Log level (debug, info, warn, error)":                             "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                                          "全てのログ出力を抑制",

		// Site and filter flags
		"Site polygons (.wkt or .geojson) to crop to":               "切り抜きに使うサイトポリゴン（.wkt または .geojson）",
		"Distance to expand site polygons by":                       "サイトポリゴンを拡張する距離",
		"Keep every Nth point":                                      "N点ごとに1点を残す",
		"Outlier filter standard deviation multiplier":              "外れ値フィルタの標準偏差倍率",
		"Neighbours considered by the outlier filter (default: 20)": "外れ値フィルタの近傍点数（デフォルト: 20）",
		"Maximum elevation":                                         "最大標高",
		"Maximum absolute scan angle":                               "最大スキャン角（絶対値）",
		"Keep only this return number":                              "このリターン番号のみ残す",

		// Classify flags
		"Classified LAS file (required)":                   "分類済みLASファイル（必須）",
		"Path of the intermediate merged file":             "中間結合ファイルのパス",
		"Recreate outputs that already exist":              "既存の出力を作り直す",
		"Slope for ground classification (default: 1)":     "地表分類の勾配（デフォルト: 1）",
		"Cell size for ground classification (default: 1)": "地表分類のセルサイズ（デフォルト: 1）",
		"Maximum window size (default: 10)":                "最大ウィンドウサイズ（デフォルト: 10）",
		"Maximum distance (default: 1)":                    "最大距離（デフォルト: 1）",
		"Use approximate ground classification":            "近似的な地表分類を使用",

		// DEM flags
		"Output directory (default: current directory)":        "出力ディレクトリ（デフォルト: カレントディレクトリ）",
		"Suffix appended to output names":                      "出力名に付加する接尾辞",
		"Search radius, repeatable (default: 0.56)":            "探索半径、複数指定可（デフォルト: 0.56）",
		"Output cell size (default: 0.1)":                      "出力セルサイズ（デフォルト: 0.1）",
		"Products to create (den, min, max, mean, idw, stdev)": "作成するプロダクト（den, min, max, mean, idw, stdev）",
		"Gap-fill products across radii":                       "半径間でプロダクトの欠損を補完",
		"Sites processed in parallel (default: 1)":             "並列処理するサイト数（デフォルト: 1）",
		"Output execution summary to file (Markdown format)":   "実行サマリーをファイルに出力（Markdown形式）",

		// Runtime messages
		"At least one LAS file is required":                 "LASファイルが1つ以上必要です",
		"A DEM type and at least one LAS file are required": "DEMタイプとLASファイルが1つ以上必要です",
		"%s exists, skipping":                               "%s は既に存在するためスキップします",
		"Summary saved to %s":                               "サマリーを %s に保存しました",
		"Failed to write summary: %s":                       "サマリーの書き込みに失敗しました: %s",

		// Summary content
		"DEM Summary":                     "DEMサマリー",
		"Generated":                       "生成日時",
		"Settings":                        "設定",
		"Products":                        "プロダクト",
		"Item":                            "項目",
		"Value":                           "値",
		"Resolution":                      "解像度",
		"Radii":                           "半径",
		"Gap-fill":                        "欠損補完",
		"Gap-filled":                      "補完済み",
		"Site buffer":                     "サイトバッファ",
		"Total Duration":                  "合計時間",
		"Input files":                     "入力ファイル数",
		"Failed":                          "失敗",
		"Radii skipped (already present)": "スキップした半径（作成済み）",
		"Product":                         "プロダクト",
		"Path":                            "パス",
		"Yes":                             "はい",
		"No":                              "いいえ",
		"None":                            "なし",
		"Generated by":                    "生成:",
	})
}
